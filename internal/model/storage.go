package model

import "context"

// MediaStorage uploads locally staged media files to the external
// storage provider and returns a public URL. A single best-effort
// attempt; the caller removes the staged file regardless of outcome.
type MediaStorage interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
