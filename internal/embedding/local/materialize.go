package local

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Materialize copies the embedded asset at assetName from assets into
// destDir/assetName, skipping the copy when a file of the expected size
// already exists there. It returns the destination path used to Init the
// engine. Embedding backend resolution calls this once per Resolver; the
// size check keeps later builds from repeating the copy.
func Materialize(assets fs.FS, assetName, destDir string) (string, error) {
	destPath := filepath.Join(destDir, filepath.Base(assetName))

	srcInfo, err := fs.Stat(assets, assetName)
	if err != nil {
		return "", fmt.Errorf("stat embedded model asset %q: %w", assetName, err)
	}

	if dstInfo, err := os.Stat(destPath); err == nil && dstInfo.Size() == srcInfo.Size() {
		return destPath, nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory: %w", err)
	}

	src, err := assets.Open(assetName)
	if err != nil {
		return "", fmt.Errorf("open embedded model asset %q: %w", assetName, err)
	}
	defer src.Close()

	tmpPath := destPath + ".tmp"
	dst, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create model file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write model file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalize model file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("install model file: %w", err)
	}

	return destPath, nil
}
