package sighc_test

import (
	"bytes"
	"embed"
	"encoding/json"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdelzotti/sigh/analysis"
	"github.com/cdelzotti/sigh/cmd/sighc"
	"github.com/cdelzotti/sigh/interp"
)

//go:embed testdata
var testSet embed.FS

// fixture is one end-to-end case: a JSON-encoded program plus the stdout
// interpreting it is expected to produce.
type fixture struct {
	ExpectedStdout string          `json:"expectedStdout"`
	Program        json.RawMessage `json:"program"`
}

func TestEndToEnd(t *testing.T) {
	files, err := testSet.ReadDir("testdata")
	require.NoError(t, err)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		testFixture(t, f)
	}
}

func testFixture(t *testing.T, f fs.DirEntry) {
	t.Run(f.Name(), func(t *testing.T) {
		content, err := testSet.ReadFile("testdata/" + f.Name())
		require.NoError(t, err)

		var fx fixture
		require.NoError(t, json.Unmarshal(content, &fx))

		root, err := sighc.DecodeRoot(fx.Program)
		require.NoError(t, err)

		r, errs := analysis.Analyze(root)
		require.Nil(t, errs, "unexpected analysis errors")

		var out bytes.Buffer
		_, err = interp.Interpret(r, root, interp.Options{Stdout: &out})
		require.NoError(t, err)
		assert.Equal(t, fx.ExpectedStdout, out.String())
	})
}
