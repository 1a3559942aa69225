package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/config"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // 本地/开发环境用 file:// bucket
)

// BlobStore 存放聊天附件。桶由 URL 决定 (file://, s3:// 等),
// 业务代码不感知底层实现。
type BlobStore struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

func NewBlobStore(ctx context.Context, cfg *config.StorageConfig) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, cfg.BucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob bucket %s: %w", cfg.BucketURL, err)
	}
	return &BlobStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// SaveAttachment 写入一个附件并返回对外访问地址。
// 对象键带 uuid, 同名文件互不覆盖。
func (s *BlobStore) SaveAttachment(ctx context.Context, sessionID uint, filename, contentType string, r io.Reader) (string, error) {
	key := fmt.Sprintf("chat/%d/%s%s", sessionID, uuid.New().String(), path.Ext(filename))

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return s.publicBaseURL + "/" + key, nil
}

func (s *BlobStore) Close() error {
	return s.bucket.Close()
}
