package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

func TestMatrix(t *testing.T) {
	tab := frame.New([]string{"a", "b", model.ColLabel})
	require.NoError(t, tab.AppendRow([]frame.Cell{frame.Float(1), frame.Float(2), frame.Float(1)}))
	require.NoError(t, tab.AppendRow([]frame.Cell{frame.Float(3), frame.Float(4), frame.Float(0)}))

	x, err := Matrix(tab, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, x)

	y, err := Labels(tab)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, y)
}

func TestMatrixRejectsNonNumeric(t *testing.T) {
	tab := frame.New([]string{"a"})
	require.NoError(t, tab.AppendRow([]frame.Cell{frame.String("text")}))

	_, err := Matrix(tab, []string{"a"})
	assert.Error(t, err)

	_, err = Labels(tab)
	assert.Error(t, err, "table without a label column")
}
