package client

import (
	"testing"

	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	netbox.NopLogger

	warnings []string
}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.warnings = append(l.warnings, msg)
}

func TestParseDocument(t *testing.T) {
	t.Parallel()

	t.Run("paths keep document order", func(t *testing.T) {
		t.Parallel()

		doc, err := parseDocument(response(200, `{"swagger":"2.0","info":{"title":"t","version":"1"},"paths":{
			"/dcim/sites/":{"get":{"responses":{"200":{"description":"OK"}}}},
			"/circuits/providers/":{"delete":{"responses":{"204":{"description":"OK"}}}},
			"/dcim/sites/{id}/":{}
		}}`), netbox.NopLogger{})
		require.NoError(t, err)

		assert.Equal(t, []string{"/dcim/sites/", "/circuits/providers/", "/dcim/sites/{id}/"}, doc.paths)
		assert.Equal(t, []netbox.Verb{netbox.VerbGet}, doc.operations["/dcim/sites/"])
		assert.Equal(t, []netbox.Verb{netbox.VerbDelete}, doc.operations["/circuits/providers/"])
		assert.Empty(t, doc.operations["/dcim/sites/{id}/"])
	})

	t.Run("unreadable operations only warn", func(t *testing.T) {
		t.Parallel()

		logger := &recordingLogger{}

		doc, err := parseDocument(response(200, `{"swagger":"2.0","paths":{"/x/":{"get":"nope"}}}`), logger)
		require.NoError(t, err)
		assert.Equal(t, []string{"/x/"}, doc.paths)
		assert.Nil(t, doc.operations)
		assert.Equal(t, []string{"OpenAPI operations unavailable"}, logger.warnings)
	})

	t.Run("unknown document flavour", func(t *testing.T) {
		t.Parallel()

		doc, err := parseDocument(response(200, `{"paths":{"/x/":{}}}`), netbox.NopLogger{})
		require.NoError(t, err)
		assert.Equal(t, []string{"/x/"}, doc.paths)
		assert.Nil(t, doc.operations)
	})

	t.Run("paths must be an object", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{`{"paths":[]}`, `{"info":{}}`, `[]`} {
			_, err := parseDocument(response(200, body), netbox.NopLogger{})
			require.ErrorIs(t, err, netbox.ErrNoPaths, body)
		}
	})
}

func TestVerbsOf(t *testing.T) {
	t.Parallel()

	verbs := verbsOf(map[string]int{"DELETE": 1, "GET": 1, "OPTIONS": 1, "PATCH": 1})
	assert.Equal(t, []netbox.Verb{netbox.VerbGet, netbox.VerbPatch, netbox.VerbDelete}, verbs)
}
