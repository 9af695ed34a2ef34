package aws_s3

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/haierkeys/pin-notes-service/pkg/fileurl"
	"github.com/haierkeys/pin-notes-service/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (p *S3) key(fileKey string) string {
	return fileurl.ObjectKey(p.Config.CustomPath, fileKey)
}

// isNotFound reports whether err is the provider's "no such object" answer.
// HEAD responses carry no body, so the status code is the only signal there.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}

// SendContent 上传内容，同名对象直接覆盖
func (p *S3) SendContent(ctx context.Context, fileKey string, content []byte, contentType string) (string, error) {
	key := p.key(fileKey)
	input := &transfermanager.UploadObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := p.TransferManager.UploadObject(ctx, input); err != nil {
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noBucket) {
			p.logger.Warn("Bucket does not exist",
				zap.String(logger.FieldBucket, p.Config.BucketName),
				zap.Error(err),
			)
		}
		return "", errors.Wrap(err, p.name)
	}
	return key, nil
}

func (p *S3) Exists(ctx context.Context, fileKey string) (bool, error) {
	_, err := p.S3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(p.key(fileKey)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, p.name)
}

func (p *S3) Open(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	out, err := p.S3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(p.key(fileKey)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(fs.ErrNotExist, "%s: %s", p.name, fileKey)
		}
		return nil, errors.Wrap(err, p.name)
	}
	return out.Body, nil
}

// SignURL 生成带有效期的预签名下载链接
func (p *S3) SignURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error) {
	req, err := s3.NewPresignClient(p.S3Client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(p.key(fileKey)),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", errors.Wrap(err, p.name)
	}
	return req.URL, nil
}

// Delete 删除对象，对象不存在时 S3 同样返回成功
func (p *S3) Delete(ctx context.Context, fileKey string) error {
	_, err := p.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(p.key(fileKey)),
	})
	if err != nil && !isNotFound(err) {
		return errors.Wrap(err, p.name)
	}
	return nil
}
