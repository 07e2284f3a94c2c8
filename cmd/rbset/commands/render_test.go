package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/rbset/pkg/treeview"
)

func TestRenderCommand_Text(t *testing.T) {
	t.Parallel()

	cfgPath := writeTestConfig(t, "")

	stdout, _, err := executeRoot(t, "render", "--no-color", "--config", cfgPath, "3", "1", "2", "2")
	require.NoError(t, err)
	assert.Equal(t, "rbtree size: 3\n"+
		"1 floor(1): 2(black)[1 3]\n"+
		"2 floor(2): 1(red)[-1 -1] 3(red)[-1 -1]\n", stdout)
}

func TestRenderCommand_DemoListsByDefault(t *testing.T) {
	t.Parallel()

	cfgPath := writeTestConfig(t, "")

	stdout, _, err := executeRoot(t, "render", "--format", "json", "--config", cfgPath)
	require.NoError(t, err)

	var doc treeview.Document

	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, []int32{1, 3, 4, 5, 10, 12, 17, 31}, doc.Keys)
	assert.Equal(t, 8, doc.Size)
	require.NotNil(t, doc.Root)
	assert.False(t, doc.Root.Red())
}

func TestRenderCommand_NegativeKeys(t *testing.T) {
	t.Parallel()

	cfgPath := writeTestConfig(t, "")

	stdout, _, err := executeRoot(t, "render", "-f", "yaml", "--config", cfgPath, "--", "-5", "7", "0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "keys: [-5, 0, 7]")
	assert.Contains(t, stdout, "size: 3")
}

func TestRenderCommand_Table(t *testing.T) {
	t.Parallel()

	cfgPath := writeTestConfig(t, "")

	stdout, _, err := executeRoot(t, "render", "-f", "table", "--config", cfgPath, "1", "2", "3")
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(stdout), "DEPTH")
	assert.Contains(t, stdout, "1 3")
}

func TestRenderCommand_HTML(t *testing.T) {
	t.Parallel()

	cfgPath := writeTestConfig(t, "")

	stdout, _, err := executeRoot(t, "render", "-f", "html", "--title", "scenario", "--config", cfgPath, "1", "2", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "echarts.init")
	assert.Contains(t, stdout, "scenario")
}

func TestRenderCommand_Errors(t *testing.T) {
	t.Parallel()

	cfgPath := writeTestConfig(t, "")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unsupported format", args: []string{"-f", "toml", "1"}, wantErr: treeview.ErrUnsupportedFormat},
		{name: "not a number", args: []string{"abc"}, wantErr: ErrInvalidKey},
		{name: "out of int32 range", args: []string{"3000000000"}, wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"render", "--config", cfgPath}, tt.args...)

			_, _, err := executeRoot(t, args...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
