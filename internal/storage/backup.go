package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup file extensions.
const (
	BackupExt          = ".db"
	EncryptedBackupExt = ".db.enc"
)

// BackupOptions controls how a backup is written.
type BackupOptions struct {
	// Dir is the backup directory. Default: a "backups" directory next to the database.
	Dir string

	// Name is the file name without extension. Default: deckops_<timestamp>.
	Name string

	// Password encrypts the backup when set.
	Password string
}

// BackupInfo describes a backup file.
type BackupInfo struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	Encrypted bool      `json:"encrypted"`
	Checksum  string    `json:"checksum"`
}

// BackupManager creates, lists and restores deck library backups.
type BackupManager struct {
	dbPath string
	now    func() time.Time
}

// NewBackupManager creates a backup manager for the database at dbPath.
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{dbPath: dbPath, now: time.Now}
}

// Dir returns the default backup directory.
func (bm *BackupManager) Dir() string {
	return filepath.Join(filepath.Dir(bm.dbPath), "backups")
}

// Backup writes a consistent snapshot of the database with VACUUM INTO,
// verifies it and optionally encrypts it.
func (bm *BackupManager) Backup(ctx context.Context, opts BackupOptions) (*BackupInfo, error) {
	dir := opts.Dir
	if dir == "" {
		dir = bm.Dir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = "deckops_" + bm.now().Format("20060102_150405")
	}

	path := filepath.Join(dir, name+BackupExt)
	final := path
	if opts.Password != "" {
		final = filepath.Join(dir, name+EncryptedBackupExt)
	}
	if _, err := os.Stat(final); err == nil {
		return nil, fmt.Errorf("backup %s already exists", final)
	}

	if err := bm.snapshot(ctx, path); err != nil {
		return nil, err
	}
	if err := verifyDatabase(ctx, path); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("backup verification failed: %w", err)
	}

	if opts.Password != "" {
		err := encryptFile(path, final, opts.Password)
		_ = os.Remove(path)
		if err != nil {
			_ = os.Remove(final)
			return nil, fmt.Errorf("failed to encrypt backup: %w", err)
		}
	}

	return backupInfo(final)
}

func (bm *BackupManager) snapshot(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	if _, err := db.ExecContext(ctx, "VACUUM INTO "+quoted); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Restore replaces the database with a backup. The current database is kept
// alongside as <db>.old.<timestamp>. Callers must close open connections first.
func (bm *BackupManager) Restore(ctx context.Context, backupPath, password string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup file: %w", err)
	}

	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		return err
	}

	tempPath := bm.dbPath + ".restore.tmp"
	if encrypted {
		if password == "" {
			return fmt.Errorf("%s is encrypted: %w", filepath.Base(backupPath), ErrPasswordRequired)
		}
		err = decryptFile(backupPath, tempPath, password)
	} else {
		err = copyFile(backupPath, tempPath)
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if err := verifyDatabase(ctx, tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("backup verification failed: %w", err)
	}

	if _, err := os.Stat(bm.dbPath); err == nil {
		old := bm.dbPath + ".old." + bm.now().Format("20060102_150405")
		if err := os.Rename(bm.dbPath, old); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
		// A stale WAL would be replayed into the restored file.
		for _, suffix := range []string{"-wal", "-shm"} {
			if _, err := os.Stat(bm.dbPath + suffix); err == nil {
				_ = os.Rename(bm.dbPath+suffix, old+suffix)
			}
		}
	}

	if err := os.Rename(tempPath, bm.dbPath); err != nil {
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

// List returns the backups in dir (default Dir()), newest first.
func (bm *BackupManager) List(dir string) ([]BackupInfo, error) {
	if dir == "" {
		dir = bm.Dir()
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, BackupExt) || strings.HasSuffix(name, EncryptedBackupExt)) {
			continue
		}
		info, err := backupInfo(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// verifyDatabase checks that path is a readable DeckOps database.
func verifyDatabase(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decks").Scan(&count); err != nil {
		return fmt.Errorf("not a deck library: %w", err)
	}
	return nil
}

func backupInfo(path string) (*BackupInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	checksum, err := fileChecksum(path)
	if err != nil {
		return nil, err
	}

	return &BackupInfo{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      stat.Size(),
		ModTime:   stat.ModTime(),
		Encrypted: strings.HasSuffix(path, EncryptedBackupExt),
		Checksum:  checksum,
	}, nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
