package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// HomeBackupDir is the fallback backup directory under the user's home.
const HomeBackupDir = "Wurm Export Backups"

const stampLayout = "20060102150405"

type BackupMeta struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	Backup    string `json:"backup"`
	CreatedAt string `json:"created_at"`
	Copied    bool   `json:"copied,omitempty"`
}

// SelectBackupDir returns <baseDir>/../backups when it can be created, and
// otherwise <home>/Wurm Export Backups. An empty home skips the fallback.
func SelectBackupDir(baseDir, home string) (string, error) {
	primary := filepath.Join(filepath.Dir(filepath.Clean(baseDir)), "backups")
	perr := os.MkdirAll(primary, 0o755)
	if perr == nil {
		return primary, nil
	}
	if home == "" {
		return "", fmt.Errorf("backup dir %s: %w", primary, perr)
	}
	fallback := filepath.Join(home, HomeBackupDir)
	if err := os.MkdirAll(fallback, 0o755); err != nil {
		return "", fmt.Errorf("backup dirs %s and %s unusable: %w", primary, fallback, errors.Join(perr, err))
	}
	return fallback, nil
}

// BackupDir moves worldDir to <backupDir>/<name>.<yyyyMMddHHmmss> and writes
// meta.json next to the moved content. A numeric suffix keeps backups made
// within the same second apart. When rename fails (for example across
// devices) the tree is copied and the original removed.
func BackupDir(worldDir, backupDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", err
	}
	name := filepath.Base(filepath.Clean(worldDir))
	base := filepath.Join(backupDir, name+"."+now.Format(stampLayout))
	dst := base
	for i := 1; ; i++ {
		if _, err := os.Lstat(dst); errors.Is(err, fs.ErrNotExist) {
			break
		} else if err != nil {
			return "", err
		}
		dst = fmt.Sprintf("%s-%d", base, i)
	}

	copied := false
	if err := os.Rename(worldDir, dst); err != nil {
		if err := copyTree(worldDir, dst); err != nil {
			return "", fmt.Errorf("backup %s: %w", worldDir, err)
		}
		if err := os.RemoveAll(worldDir); err != nil {
			return "", err
		}
		copied = true
	}

	meta := BackupMeta{
		Name:      name,
		Source:    worldDir,
		Backup:    dst,
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
		Copied:    copied,
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(dst, "meta.json"), b, 0o644)
	}
	return dst, nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
