package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/pithecene-io/docqa/types"
)

// fileNamespace scopes file IDs derived by FileID.
var fileNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://docqa.pithecene.io/files"))

// FileID derives a stable ID for a local file. The same path, size and
// modification time always yield the same ID.
func FileID(absPath string, size, modUnixNano int64) string {
	key := absPath + "\x00" + strconv.FormatInt(size, 10) + "\x00" + strconv.FormatInt(modUnixNano, 10)
	return uuid.NewSHA1(fileNamespace, []byte(key)).String()
}

// DescribeFile builds a SelectedFile for a file on disk. The MIME type is
// sniffed from content; when sniffing only finds a generic type, the type
// registered for the extension is used instead. Acceptance is decided by
// SelectFile from the extension alone.
func DescribeFile(path string) (types.SelectedFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return types.SelectedFile{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return types.SelectedFile{}, err
	}
	if info.IsDir() {
		return types.SelectedFile{}, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(abs)
	if err != nil {
		return types.SelectedFile{}, fmt.Errorf("detect type of %s: %w", path, err)
	}

	typ := mt.String()
	if mt.Is("application/octet-stream") || mt.Is("application/x-ole-storage") {
		if known := types.FormatMIMEType(abs); known != "" {
			typ = known
		}
	}

	id := FileID(abs, info.Size(), info.ModTime().UnixNano())
	return types.NewSelectedFile(id, abs, info.Size(), typ), nil
}

// SelectPath describes the file at path and selects it.
func (c *Controller) SelectPath(path string) error {
	f, err := DescribeFile(path)
	if err != nil {
		return err
	}
	return c.SelectFile(f)
}
