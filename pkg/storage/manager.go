package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ultranet/catalog/config"
	"github.com/ultranet/catalog/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the disks named in config. The local disk always exists; the
// s3 disk is added only when S3_BUCKET is set, and a failure to build it is
// logged rather than fatal.
func Connect() error {
	local, err := NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return err
	}
	Register(local)

	if config.StorageS3Bucket() != "" {
		s3Disk, err := NewS3Disk(context.Background(), S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			Register(s3Disk)
		}
	}

	managerMu.Lock()
	defaultDisk = config.StorageDefault()
	managerMu.Unlock()
	return nil
}

// Register adds (or replaces) a disk under its Name.
func Register(d Disk) {
	managerMu.Lock()
	disks[d.Name()] = d
	managerMu.Unlock()
}

// Use returns the named disk; "" selects the default (STORAGE_DISK).
func Use(name string) (Disk, error) {
	managerMu.RLock()
	defer managerMu.RUnlock()

	if name == "" {
		name = defaultDisk
	}
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured (have %v)", name, names())
	}
	return d, nil
}

func names() []string {
	out := make([]string, 0, len(disks))
	for n := range disks {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
