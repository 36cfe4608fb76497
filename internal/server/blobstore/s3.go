package blobstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/droply/internal/common"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Presigner is the subset of *s3.PresignClient used by S3Store.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Options configures NewS3Store.
type S3Options struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	// PublicURL prefixes object keys to build file URLs. Defaults to
	// Endpoint/Bucket.
	PublicURL string
	// Root is the key prefix searched by ListFiles, e.g. "droply/".
	Root string
}

// S3Store implements Store on an S3-compatible bucket (AWS S3, MinIO).
type S3Store struct {
	client    S3API
	presigner Presigner
	bucket    string
	publicURL string
	root      string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Store builds the S3 client once from static credentials.
func NewS3Store(ctx context.Context, o S3Options) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})

	publicURL := o.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimSuffix(o.Endpoint, "/") + "/" + o.Bucket
	}

	return NewS3StoreWithClient(client, s3.NewPresignClient(client), o.Bucket, publicURL, o.Root), nil
}

// NewS3StoreWithClient wires an S3Store around existing clients.
func NewS3StoreWithClient(client S3API, presigner Presigner, bucket, publicURL, root string) *S3Store {
	return &S3Store{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		root:      rootPrefix(root),
	}
}

// rootPrefix turns root into a key prefix ending in a slash, so that a
// search under "droply" never reaches "droply-archive".
func rootPrefix(root string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return ""
	}
	return root + "/"
}

func objectKey(p string) string {
	return strings.TrimPrefix(p, "/")
}

// Upload stores body under folder/name. The returned Path carries a leading
// slash, the URL is PublicURL/key.
func (s *S3Store) Upload(ctx context.Context, body io.Reader, size int64, name, folder, contentType string) (*UploadResult, error) {
	key := objectKey(path.Join(folder, name))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put %s: %v", common.ErrorRemoteStore, key, err)
	}

	return &UploadResult{
		URL:  s.publicURL + "/" + key,
		Path: "/" + key,
	}, nil
}

// ListFiles searches the store root for objects whose base name equals
// name, returning at most limit hits.
func (s *S3Store) ListFiles(ctx context.Context, name string, limit int) ([]Object, error) {
	var found []Object

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.root),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list: %v", common.ErrorRemoteStore, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if path.Base(key) != name {
				continue
			}
			found = append(found, Object{Ref: key, Name: name, Size: aws.ToInt64(obj.Size)})
			if limit > 0 && len(found) >= limit {
				return found, nil
			}
		}
	}
	return found, nil
}

// DeleteFile removes the object with the given key.
func (s *S3Store) DeleteFile(ctx context.Context, ref string) error {
	key := objectKey(ref)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrorRemoteStore, key, err)
	}
	return nil
}

// PresignGet returns a temporary download URL for the object at p.
func (s *S3Store) PresignGet(ctx context.Context, p string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(p)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%w: presign: %v", common.ErrorRemoteStore, err)
	}
	return req.URL, nil
}
