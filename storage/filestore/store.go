// Package filestore keeps the session in a JSON file, the terminal equivalent of browser local storage.
package filestore

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const FileName = "session.json"

type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store writing to `dir`/session.json; `dir` is created when missing.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}
	return &Store{path: filepath.Join(dir, FileName)}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (map[string]string, error) {
	data := make(map[string]string)
	buf, err := ioutil.ReadFile(s.path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading storage file")
	}
	if len(buf) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, errors.Wrap(err, "decoding storage file")
	}
	return data, nil
}

func (s *Store) save(data map[string]string) error {
	if len(data) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "removing storage file")
		}
		return nil
	}
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding storage file")
	}
	tmp := s.path + ".tmp"
	if err := ioutil.WriteFile(tmp, buf, 0o600); err != nil {
		return errors.Wrap(err, "writing storage file")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replacing storage file")
}

func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.save(data)
}

func (s *Store) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(data, k)
	}
	return s.save(data)
}
