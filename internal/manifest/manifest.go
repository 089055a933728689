// Package manifest loads route table definitions from manifest files.
//
// A manifest is a JSON or TOML document listing routes in priority order:
//
//	[[routes]]
//	path = "/app/edit/:appId"
//	view = "AppEditPage"
//	name = "appEdit"
//
//	[[routes]]
//	path = "/admin/userManage"
//	view = "UserManagePage"
//	meta = { access = "admin" }
//
// Manifests are read from the local filesystem or from S3
// ("s3://bucket/key"). The format follows the extension.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/navcore/internal/config"
	"github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/router"
)

// DefaultMaxSize caps manifest size in bytes.
const DefaultMaxSize = 1 << 20

var (
	errTooLarge = stderrors.New("manifest exceeds size limit")
	errNoS3     = stderrors.New("no S3 client configured")
)

// File is the manifest document.
type File struct {
	Routes []router.Definition `json:"routes" toml:"routes"`
}

// ObjectGetter is the part of *s3.Client the loader uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads manifests.
type Loader struct {
	// S3 fetches s3:// manifests. Nil disables them.
	S3 ObjectGetter

	// MaxSize caps manifest size. Default: DefaultMaxSize.
	MaxSize int64

	Logger *slog.Logger
}

// Load reads and decodes the manifest at location. Errors are
// *errors.NavError values with code N004 or N006.
func (l *Loader) Load(ctx context.Context, location string) ([]router.Definition, error) {
	format := strings.ToLower(path.Ext(location))
	if format != ".json" && format != ".toml" {
		return nil, errors.New(errors.CodeManifestFormat).WithSubject(location)
	}

	data, err := l.read(ctx, location)
	if err != nil {
		return nil, errors.New(errors.CodeManifest).WithSubject(location).Wrap(err)
	}

	defs, err := Decode(data, format)
	if err != nil {
		return nil, errors.New(errors.CodeManifest).WithSubject(location).Wrap(err)
	}

	l.logger().Info("route manifest loaded", "location", location, "routes", len(defs))
	return defs, nil
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, error) {
	var r io.ReadCloser
	if strings.HasPrefix(location, "s3://") {
		bucket, key, err := ParseS3URL(location)
		if err != nil {
			return nil, err
		}
		if l.S3 == nil {
			return nil, errNoS3
		}
		out, err := l.S3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("s3 get object: %w", err)
		}
		r = out.Body
	} else {
		f, err := os.Open(location)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	limit := l.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default().With("component", "manifest")
}

// Decode parses a manifest. format is ".json" or ".toml". Unknown fields
// are rejected so a typo ("veiw") cannot silently drop a route's view.
func Decode(data []byte, format string) ([]router.Definition, error) {
	var f File
	switch format {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("decode toml: unknown keys %s", strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}

	if len(f.Routes) == 0 {
		return nil, stderrors.New("manifest has no routes")
	}
	return f.Routes, nil
}

// ParseS3URL splits "s3://bucket/key" into its parts.
func ParseS3URL(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 url: %q", location)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url needs bucket and key: %q", location)
	}
	return bucket, key, nil
}

// NewS3Client builds an S3 client from configuration. Credentials come
// from the standard AWS_* environment variables.
func NewS3Client(cfg config.S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
		Credentials:  aws.NewCredentialsCache(envCredentials{}),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

type envCredentials struct{}

func (envCredentials) Retrieve(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, stderrors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "EnvironmentVariables",
	}, nil
}
