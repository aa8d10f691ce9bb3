package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	appConfig "github.com/manishhsuthar/EduConnect/internal/config"
	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/manishhsuthar/EduConnect/internal/store"
	"github.com/manishhsuthar/EduConnect/pkg/logger"
	"github.com/manishhsuthar/EduConnect/pkg/utils"
)

func getS3Client() (*s3.Client, error) {
	cfg := appConfig.AppConfig
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(r2Resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// UploadAttachment stores a chat attachment in object storage and
// returns the reference the client then attaches to a message. Type and
// size are validated before any bytes leave the process; a file that
// would be rejected by message persistence is never uploaded.
func UploadAttachment(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		file, header, err = c.Request.FormFile("attachment")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid file field found"})
			return
		}
	}
	defer file.Close()

	mimetype := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimetype, "image/") && !strings.HasPrefix(mimetype, "video/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image and video attachments are allowed"})
		return
	}
	if header.Size > store.MaxAttachmentSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attachment exceeds the 5 MB limit"})
		return
	}

	ext := filepath.Ext(header.Filename)
	key := fmt.Sprintf("%s/%s%s", c.DefaultQuery("folder", "educonnect/chat"), utils.GenerateID(), ext)

	client, err := getS3Client()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to init storage client")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to init storage client"})
		return
	}

	cfg := appConfig.AppConfig
	_, err = client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(cfg.R2BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(mimetype),
	})
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Attachment upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	publicURL := cfg.R2PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.r2.dev", cfg.R2BucketName)
	}

	attachment := models.Attachment{
		URL:      fmt.Sprintf("%s/%s", publicURL, key),
		Filename: header.Filename,
		Mimetype: mimetype,
		Size:     header.Size,
	}

	c.JSON(http.StatusOK, gin.H{"attachment": attachment})
}

// UploadProfilePhoto stores a profile photo under its own folder.
func UploadProfilePhoto(c *gin.Context) {
	c.Request.URL.RawQuery = "folder=educonnect/profiles"
	UploadAttachment(c)
}
