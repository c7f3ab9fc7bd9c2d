package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned when no record exists for a root.
var ErrNoSession = errors.New("session: no saved view")

// Record 保存某个树根的浏览状态：展开的节点、光标与滚动偏移。
type Record struct {
	ID       string    `json:"id"`
	Root     string    `json:"root"`
	Expanded []string  `json:"expanded,omitempty"`
	Cursor   string    `json:"cursor,omitempty"`
	Y        float64   `json:"y"`
	Updated  time.Time `json:"updated"`
}

// Store 以每条记录一个 JSON 文件的方式保存在 Dir 下。
type Store struct {
	Dir string
}

// DefaultDir 返回 ~/.treescroll/sessions。
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".treescroll", "sessions")
}

// NewStore 创建存储；dir 为空时使用 DefaultDir。
func NewStore(dir string) Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return Store{Dir: dir}
}

// Save 写入记录，ID 为空时分配新 ID。
func (s Store) Save(rec Record) (Record, error) {
	if s.Dir == "" {
		return rec, errors.New("session dir is empty and $HOME is not set")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Updated = time.Now()
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return rec, err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return rec, err
	}
	if err := os.WriteFile(s.path(rec.ID), data, 0o644); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s Store) Load(id string) (Record, error) {
	var rec Record
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("parse session %s: %w", id, err)
	}
	return rec, nil
}

// List 返回全部可读记录，按更新时间倒序。
func (s Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var records []Record
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		rec, err := s.Load(trimExt(e.Name()))
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Updated.After(records[j].Updated)
	})
	return records, nil
}

// ForRoot 返回 root 最近一次保存的记录。
func (s Store) ForRoot(root string) (Record, error) {
	records, err := s.List()
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if samePath(rec.Root, root) {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNoSession, root)
}

func (s Store) path(id string) string {
	return filepath.Join(s.Dir, id+".json")
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	return absA == absB
}
