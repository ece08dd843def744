package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Uploader stores one object.
type Uploader interface {
	Put(ctx context.Context, bucket, key, contentType string, data []byte) (string, error)
}

// S3Config describes an S3-compatible endpoint. An empty Endpoint uses AWS.
type S3Config struct {
	Endpoint       string
	Region         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// S3ConfigFromEnv reads S3_ENDPOINT, S3_REGION, S3_ACCESS_KEY, S3_SECRET_KEY
// and S3_FORCE_PATH_STYLE.
func S3ConfigFromEnv() S3Config {
	return S3Config{
		Endpoint:       strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		Region:         os.Getenv("S3_REGION"),
		AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		SecretKey:      os.Getenv("S3_SECRET_KEY"),
		ForcePathStyle: os.Getenv("S3_FORCE_PATH_STYLE") == "true",
	}
}

// S3Uploader puts objects with the AWS SDK.
type S3Uploader struct {
	client *s3.Client
}

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &S3Uploader{client: client}, nil
}

// Put uploads data and returns the object's s3:// location.
func (u *S3Uploader) Put(ctx context.Context, bucket, key, contentType string, data []byte) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put %s: %w", key, err)
	}
	return "s3://" + bucket + "/" + key, nil
}

// ManifestEntry records one uploaded image.
type ManifestEntry struct {
	Key           string `json:"key"`
	URL           string `json:"url"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	OriginalBytes int64  `json:"original_bytes"`
	Bytes         int    `json:"bytes"`
	OriginalFile  string `json:"original_filename"`
}

// Manifest maps a local path, relative to the upload directory, to its
// uploaded image.
type Manifest map[string]ManifestEntry

// ReadManifest loads a manifest file. A missing file is an empty manifest.
func ReadManifest(name string) (Manifest, error) {
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m := Manifest{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", name, err)
	}
	return m, nil
}

// Write stores the manifest as indented JSON.
func (m Manifest) Write(name string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(name, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// UploadOptions configures UploadDir.
type UploadOptions struct {
	Dir    string
	Bucket string
	Prefix string
	CompressOptions
}

// UploadDir compresses every JPEG and PNG directly inside Dir and uploads it
// under Prefix. Keys use the file stem with "&" spelled out, and a ".jpg"
// extension. Failed files are reported together; the rest are recorded in
// manifest.
func UploadDir(ctx context.Context, up Uploader, opts UploadOptions, manifest Manifest, logger *logrus.Logger) error {
	entries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.Dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && isImage(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var result *multierror.Error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := uploadFile(ctx, up, opts, name)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		manifest[path.Join(filepath.ToSlash(opts.Dir), name)] = *entry
		logger.WithFields(logrus.Fields{
			"key":            entry.Key,
			"original_bytes": entry.OriginalBytes,
			"bytes":          entry.Bytes,
		}).Infof("Uploaded %s", name)
	}
	return result.ErrorOrNil()
}

func uploadFile(ctx context.Context, up Uploader, opts UploadOptions, name string) (*ManifestEntry, error) {
	full := filepath.Join(opts.Dir, name)
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	img, err := Compress(f, opts.CompressOptions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	key := ObjectKey(opts.Prefix, name)
	url, err := up.Put(ctx, opts.Bucket, key, "image/jpeg", img.Data)
	if err != nil {
		return nil, err
	}
	return &ManifestEntry{
		Key:           key,
		URL:           url,
		Width:         img.Width,
		Height:        img.Height,
		OriginalBytes: info.Size(),
		Bytes:         len(img.Data),
		OriginalFile:  name,
	}, nil
}

// ObjectKey builds the storage key for a local file name.
func ObjectKey(prefix, name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.ReplaceAll(stem, "&", "_and_")
	return path.Join(strings.Trim(prefix, "/"), stem+".jpg")
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
