package appfs

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFS(t *testing.T) {
	for _, name := range []string{
		"migrations/00001_init.sql",
		"catalog/roadmaps.yaml",
		"templates/web/_base.gohtml",
		"templates/web/landing.gohtml",
		"templates/email/_base.gohtml",
		"templates/email/_base.txt",
		"templates/email/welcome.txt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fs.Stat(FS, name)
			assert.NoError(t, err)
		})
	}
}
