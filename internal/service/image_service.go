package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

// ImageService lưu ảnh chụp từ cổng/camera lên S3 và ghi metadata vào DB
type ImageService struct {
	s3Client  *s3.Client
	bucket    string
	region    string
	imageRepo repository.UploadedImageRepository
}

func NewImageService(s3Client *s3.Client, bucket string, region string, imageRepo repository.UploadedImageRepository) *ImageService {
	return &ImageService{
		s3Client:  s3Client,
		bucket:    bucket,
		region:    region,
		imageRepo: imageRepo,
	}
}

func (s *ImageService) Upload(ctx context.Context, fileName string, size int64, contentType string, file io.Reader, uploadedBy *int) (*domain.UploadedImage, error) {
	objectKey := fmt.Sprintf("parking-images/%s%s", uuid.NewString(), filepath.Ext(fileName))

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("lỗi upload ảnh lên S3: %w", err)
	}

	image := &domain.UploadedImage{
		ObjectKey: objectKey,
		URL:       fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey),
		FileName:  fileName,
		SizeBytes: size,
	}
	if uploadedBy != nil {
		image.UploadedBy = null.IntFrom(int64(*uploadedBy))
	}
	return s.imageRepo.Create(ctx, image)
}

func (s *ImageService) List(ctx context.Context) ([]domain.UploadedImage, error) {
	return s.imageRepo.FindAll(ctx)
}

// Delete xóa metadata trong DB trước rồi xóa object trên S3
func (s *ImageService) Delete(ctx context.Context, id int) error {
	image, err := s.imageRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(image.ObjectKey),
	})
	if err != nil {
		return fmt.Errorf("đã xóa metadata nhưng lỗi xóa object '%s' trên S3: %w", image.ObjectKey, err)
	}
	return nil
}
