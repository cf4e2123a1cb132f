// Package storage is the blob store collaborator. Objects live under
// deterministic per-project keys, so a retried stage overwrites its previous
// write instead of duplicating it.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
)

// Keys for everything a project stores. Deterministic by design: re-running
// a stage lands on the same key.
func SourceVideoKey(projectID string, ext string) string {
	return path.Join("projects", projectID, "source"+ext)
}

func ExtractedAudioKey(projectID string) string {
	return path.Join("projects", projectID, "audio.wav")
}

func DubbedAudioKey(projectID string) string {
	return path.Join("projects", projectID, "dubbed.wav")
}

func OutputVideoKey(projectID string) string {
	return path.Join("projects", projectID, "output.mp4")
}

// Store is the port the pipeline uses. Upload returns a client-reachable URL
// for the stored object.
type Store interface {
	Upload(ctx context.Context, key, localPath, contentType string) (string, error)
	Download(ctx context.Context, key, destPath string) error
	Remove(ctx context.Context, keys ...string) error
}

// ProjectKeys lists every derived key a project may own, for purge.
func ProjectKeys(projectID string) []string {
	return []string{
		ExtractedAudioKey(projectID),
		DubbedAudioKey(projectID),
		OutputVideoKey(projectID),
	}
}

// writeFile is shared by implementations downloading into a local path.
func writeFile(destPath string, data []byte) error {
	if err := os.MkdirAll(path.Dir(destPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}
