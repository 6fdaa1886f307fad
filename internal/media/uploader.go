package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cafecanastra/conteudo/internal/logger"
	"github.com/cafecanastra/conteudo/internal/utils"
)

// Uploader pushes post images to CloudFlare R2 through the S3 API. Image
// replacement is two-step by contract: the binary is uploaded here first and
// the returned URL goes into the post patch.
type Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewUploader builds an R2 uploader. With incomplete credentials it returns
// nil and the image endpoint reports the media store as unavailable; the
// rest of the service keeps running.
func NewUploader(ctx context.Context, endpoint, accessKey, secretKey, bucket, publicURL string) (*Uploader, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		logger.Get().Warn().Msg("R2 credentials not set, image uploads disabled")
		return nil, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Upload stores the image and returns its public URL. Keys are dated and
// hash-prefixed so re-uploads of the same filename never collide.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	now := time.Now()
	key := fmt.Sprintf("uploads/%s/%s%s",
		now.Format("2006/01"),
		utils.ShortHash(filename+now.Format(time.RFC3339Nano)),
		strings.ToLower(path.Ext(filename)),
	)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	logger.Get().Info().Str("key", key).Msg("image uploaded")
	return u.publicURL + "/" + key, nil
}
