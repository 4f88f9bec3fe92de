package generator

import (
	"embed"
	"io/fs"
	"os"

	"certdocs/internal/model"
)

//go:embed templates/*.docx
var embedded embed.FS

// Templates returns dir as a template FS, or the bundled templates when dir
// is empty.
func Templates(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// LocalTemplateRef names the bundled template for a form kind.
func LocalTemplateRef(kind model.Kind) string {
	return string(kind) + ".docx"
}
