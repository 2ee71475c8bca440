package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/logging"
	sc "github.com/devquest/codenexus/internal/server/config"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/storage"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AvatarService hands out presigned S3 URLs for profile pictures. The
// object key is stored in User.Avatar once the client confirms the upload.
type AvatarService struct {
	store  storage.Storage
	config *sc.Config
	log    logging.Logger
}

func NewAvatarService(store storage.Storage, cfg *sc.Config, log logging.Logger) *AvatarService {
	return &AvatarService{store: store, config: cfg, log: log.With("module", "avatars")}
}

// AvatarKey returns a fresh object key under the user's avatar prefix.
func AvatarKey(userID int64) string {
	return fmt.Sprintf("%s%v", avatarPrefix(userID), uuid.New())
}

func avatarPrefix(userID int64) string {
	return fmt.Sprintf("avatars/%d/", userID)
}

func (s *AvatarService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL returns a new object key and a presigned PUT URL for it.
func (s *AvatarService) UploadURL(ctx context.Context, userID int64) (string, string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := AvatarKey(userID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// Confirm stores an uploaded key as the user's avatar. Keys outside the
// user's own prefix are rejected.
func (s *AvatarService) Confirm(ctx context.Context, userID int64, key string) (*models.User, error) {
	if !strings.HasPrefix(key, avatarPrefix(userID)) || len(key) == len(avatarPrefix(userID)) {
		return nil, fmt.Errorf("%w: avatar key does not belong to user", common.ErrorValidation)
	}
	u, err := s.store.UpdateUser(ctx, userID, models.UserUpdate{Avatar: &key})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "avatar updated", "user_id", userID)
	return u, nil
}

// DownloadURL returns a presigned GET URL for the user's current avatar.
func (s *AvatarService) DownloadURL(ctx context.Context, userID int64) (string, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.Avatar == nil || *u.Avatar == "" {
		return "", fmt.Errorf("avatar: %w", common.ErrorNotFound)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    u.Avatar,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
