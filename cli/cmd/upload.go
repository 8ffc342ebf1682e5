package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/docqa/cli/render"
	"github.com/pithecene-io/docqa/ingest"
	"github.com/pithecene-io/docqa/iox"
)

// UploadResponse describes the indexed document.
type UploadResponse struct {
	Name        string `json:"name"`
	Extension   string `json:"extension"`
	Type        string `json:"type"`
	Size        string `json:"size"`
	StoragePath string `json:"storage_path,omitempty"`
	State       string `json:"state"`
	Message     string `json:"message,omitempty"`
}

// UploadCommand returns the upload command.
// It selects, uploads and indexes one file, replacing the server document.
func UploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload and index a document (.pdf, .doc, .docx, .txt)",
		ArgsUsage: "<file>",
		Flags:     OutputFlags(),
		Action:    uploadAction,
	}
}

func uploadAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("file path required", exitOperation)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	e, err := setup(c, errWriter(c))
	if err != nil {
		return err
	}
	defer iox.DiscardErr(e.Close)

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	ctl := e.sess.Ingest
	if err := ctl.SelectPath(c.Args().First()); err != nil {
		return fail(err, noticeText(ctl.Snapshot()))
	}
	if err := ctl.UploadAndIndex(ctx); err != nil {
		return fail(err, noticeText(ctl.Snapshot()))
	}

	snap := ctl.Snapshot()
	doc := snap.Uploaded
	return r.Render(UploadResponse{
		Name:        doc.Name,
		Extension:   doc.Extension(),
		Type:        doc.Type,
		Size:        doc.FormattedSize,
		StoragePath: doc.StoragePath,
		State:       string(snap.State),
		Message:     snap.IndexMessage,
	})
}

func noticeText(s ingest.Snapshot) string {
	if s.Notice == nil {
		return ""
	}
	return s.Notice.Text
}
