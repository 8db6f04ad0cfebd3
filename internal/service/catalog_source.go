package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"solveit_backend/internal/config"
	"solveit_backend/internal/util"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CatalogFileNames are the per-company files ingestion looks for, in order.
var CatalogFileNames = []string{"5. All.csv", "All.csv", "All.xlsx"}

// CatalogSource materialises a catalog as a local directory holding one
// sub-directory per company.
type CatalogSource interface {
	Name() string
	// Fetch returns the directory and a cleanup func that removes anything Fetch
	// created. cleanup is never nil when err is nil.
	Fetch(ctx context.Context) (dir string, cleanup func(), err error)
}

// DirSource reads an already checked out catalog.
type DirSource struct {
	Path string
}

func (s *DirSource) Name() string { return "local:" + s.Path }

func (s *DirSource) Fetch(ctx context.Context) (string, func(), error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "", nil, err
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("%s is not a directory", s.Path)
	}
	return s.Path, func() {}, nil
}

// GitSource shallow-clones a catalog repository.
type GitSource struct {
	RepoURL string
	WorkDir string
}

func (s *GitSource) Name() string { return "git:" + s.RepoURL }

func (s *GitSource) Fetch(ctx context.Context) (string, func(), error) {
	tmp, err := os.MkdirTemp(s.WorkDir, "catalog-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(tmp) }

	dst := filepath.Join(tmp, "repo")
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", s.RepoURL, dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("git clone %s: %w: %s", s.RepoURL, err, strings.TrimSpace(string(out)))
	}
	return dst, cleanup, nil
}

// MinioSource downloads catalog files stored under a bucket prefix.
type MinioSource struct {
	Config  *config.StorageConfig
	Client  *minio.Client
	Prefix  string
	WorkDir string
}

func NewMinioSource(cfg *config.StorageConfig, prefix, workDir string) (*MinioSource, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioSource{Config: cfg, Client: client, Prefix: prefix, WorkDir: workDir}, nil
}

func (s *MinioSource) Name() string { return "minio:" + s.Config.MinioBucket + "/" + s.Prefix }

func (s *MinioSource) Fetch(ctx context.Context) (string, func(), error) {
	tmp, err := os.MkdirTemp(s.WorkDir, "catalog-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(tmp) }

	objects := s.Client.ListObjects(ctx, s.Config.MinioBucket, minio.ListObjectsOptions{
		Prefix:    s.Prefix,
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			cleanup()
			return "", nil, obj.Err
		}
		local, ok := localCatalogPath(tmp, s.Prefix, obj.Key)
		if !ok {
			continue
		}
		if err := s.Client.FGetObject(ctx, s.Config.MinioBucket, obj.Key, local, minio.GetObjectOptions{}); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("download %s: %w", obj.Key, err)
		}
	}
	return tmp, cleanup, nil
}

// OSSSource downloads catalog files stored under an Aliyun OSS bucket prefix.
type OSSSource struct {
	Config  *config.StorageConfig
	Client  *oss.Client
	Prefix  string
	WorkDir string
}

func NewOSSSource(cfg *config.StorageConfig, prefix, workDir string) (*OSSSource, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSSource{Config: cfg, Client: client, Prefix: prefix, WorkDir: workDir}, nil
}

func (s *OSSSource) Name() string { return "oss:" + s.Config.OSSBucket + "/" + s.Prefix }

func (s *OSSSource) Fetch(ctx context.Context) (string, func(), error) {
	bucket, err := s.Client.Bucket(s.Config.OSSBucket)
	if err != nil {
		return "", nil, err
	}

	tmp, err := os.MkdirTemp(s.WorkDir, "catalog-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(tmp) }

	token := ""
	for {
		if err := ctx.Err(); err != nil {
			cleanup()
			return "", nil, err
		}
		page, err := bucket.ListObjectsV2(oss.Prefix(s.Prefix), oss.ContinuationToken(token), oss.MaxKeys(1000))
		if err != nil {
			cleanup()
			return "", nil, err
		}
		for _, obj := range page.Objects {
			local, ok := localCatalogPath(tmp, s.Prefix, obj.Key)
			if !ok {
				continue
			}
			if err := bucket.GetObjectToFile(obj.Key, local); err != nil {
				cleanup()
				return "", nil, fmt.Errorf("download %s: %w", obj.Key, err)
			}
		}
		if !page.IsTruncated {
			break
		}
		token = page.NextContinuationToken
	}
	return tmp, cleanup, nil
}

// localCatalogPath maps an object key under prefix to <root>/<company>/<file> and
// creates the company directory. Keys that are not catalog files are rejected.
func localCatalogPath(root, prefix, key string) (string, bool) {
	rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
	company, file := path.Split(rel)
	company = strings.Trim(company, "/")
	if company == "" || strings.Contains(company, "/") || !isCatalogFile(file) {
		return "", false
	}

	dir := filepath.Join(root, company)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", false
	}
	return filepath.Join(dir, file), true
}

func isCatalogFile(name string) bool {
	for _, candidate := range CatalogFileNames {
		if name == candidate {
			return true
		}
	}
	return false
}

// NewCatalogSource picks the source named by kind. location is a directory for
// local, a repository URL for git, and a key prefix for the bucket stores; empty
// values fall back to the config.
func NewCatalogSource(cfg *config.Config, kind, location string) (CatalogSource, error) {
	workDir := cfg.Ingest.WorkDir
	if workDir != "" {
		if err := os.MkdirAll(workDir, 0755); err != nil {
			return nil, err
		}
	}

	switch kind {
	case util.StorageLocal, "":
		if location == "" {
			location = cfg.Storage.LocalPath
		}
		return &DirSource{Path: location}, nil
	case util.StorageGit:
		if location == "" {
			location = cfg.Ingest.RepoURL
		}
		return &GitSource{RepoURL: location, WorkDir: workDir}, nil
	case util.StorageMinio:
		if location == "" {
			location = cfg.Ingest.Prefix
		}
		return NewMinioSource(&cfg.Storage, location, workDir)
	case util.StorageOSS:
		if location == "" {
			location = cfg.Ingest.Prefix
		}
		return NewOSSSource(&cfg.Storage, location, workDir)
	}
	return nil, fmt.Errorf("unknown catalog source %q", kind)
}
