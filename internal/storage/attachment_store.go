package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AttachmentStoreInterface lists the files attached to every outgoing
// campaign message.
type AttachmentStoreInterface interface {
	ListPaths() ([]string, error)
}

// AttachmentStore keeps uploaded attachments as plain files in a data
// directory.
type AttachmentStore struct {
	Dir string
}

type AttachmentInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func NewAttachmentStore(dir string) (*AttachmentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &AttachmentStore{Dir: dir}, nil
}

func (s *AttachmentStore) Save(filename string, data []byte) error {
	name, err := s.safeName(filename)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o644)
}

func (s *AttachmentStore) List() ([]AttachmentInfo, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	infos := []AttachmentInfo{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, AttachmentInfo{Filename: e.Name(), Size: fi.Size()})
	}
	return infos, nil
}

func (s *AttachmentStore) ListPaths() ([]string, error) {
	infos, err := s.List()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(infos))
	for _, info := range infos {
		paths = append(paths, filepath.Join(s.Dir, info.Filename))
	}
	return paths, nil
}

func (s *AttachmentStore) Delete(filename string) error {
	name, err := s.safeName(filename)
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(s.Dir, name))
}

// safeName rejects names that would escape the data directory.
func (s *AttachmentStore) safeName(filename string) (string, error) {
	name := filepath.Base(filename)
	if name == "" || name == "." || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid attachment name %q", filename)
	}
	return name, nil
}

var _ AttachmentStoreInterface = (*AttachmentStore)(nil)
