package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNone(t *testing.T) {
	assert := assert.New(t)

	n, err := NewNone(2)
	assert.NotNil(n)
	assert.NoError(err)

	n, err = NewNone(0)
	assert.Nil(n)
	assert.Error(err)
}

func TestNoneSampleMeanCov(t *testing.T) {
	assert := assert.New(t)

	n, err := NewNone(3)
	assert.NoError(err)

	sample := n.Sample()
	assert.Equal(3, sample.Len())
	for i := 0; i < 3; i++ {
		assert.Equal(0.0, sample.AtVec(i))
	}

	mean := n.Mean()
	assert.Len(mean, 3)

	cov := n.Cov()
	assert.Equal(3, cov.SymmetricDim())
	assert.Equal(0.0, cov.At(0, 0))
}

func TestNoneReset(t *testing.T) {
	assert := assert.New(t)

	n, err := NewNone(1)
	assert.NoError(err)
	assert.NoError(n.Reset())
	assert.NotEmpty(n.String())
}
