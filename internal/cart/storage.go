package cart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage 购物车持久化槽位
// 一个槽位只保存一个购物车的 JSON 数组，由唯一的 Store 独占写入。
type Storage interface {
	// Load 读取槽位内容，槽位为空时返回 nil, nil
	Load(ctx context.Context) ([]byte, error)
	// Save 整体覆盖槽位内容
	Save(ctx context.Context, data []byte) error
	// Clear 删除槽位内容
	Clear(ctx context.Context) error
}

// MemoryStorage 进程内槽位（不落盘）
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStorage 创建进程内槽位
func NewMemoryStorage(initial []byte) *MemoryStorage {
	s := &MemoryStorage{}
	if initial != nil {
		s.data = append([]byte(nil), initial...)
	}
	return s
}

// Load 读取槽位
func (s *MemoryStorage) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

// Save 写入槽位
func (s *MemoryStorage) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}

// Clear 清空槽位
func (s *MemoryStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// FileStorage 本地文件槽位
// 写入先落到同目录临时文件再 rename，读者只会看到旧值或新值。
type FileStorage struct {
	path string
}

// NewFileStorage 创建文件槽位，dir 不存在时自动创建
func NewFileStorage(dir, name string) (*FileStorage, error) {
	dir = strings.TrimSpace(dir)
	name = strings.TrimSpace(name)
	if dir == "" {
		return nil, errors.New("cart storage dir is empty")
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid cart storage name: %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart storage dir failed: %w", err)
	}
	return &FileStorage{path: filepath.Join(dir, name+".json")}, nil
}

// Path 返回槽位文件路径
func (s *FileStorage) Path() string {
	return s.path
}

// Load 读取槽位文件
func (s *FileStorage) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save 原子替换槽位文件
func (s *FileStorage) Save(_ context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Clear 删除槽位文件
func (s *FileStorage) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
