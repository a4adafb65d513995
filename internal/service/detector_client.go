package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
)

// DetectorClient gọi sang dịch vụ FastAPI nhận diện ảnh: đọc biển số và
// phát hiện tọa độ các xe trong khung hình.
type DetectorClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewDetectorClient(baseURL string, timeout time.Duration) *DetectorClient {
	return &DetectorClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type detectPlateResponse struct {
	LicensePlate string  `json:"license_plate"`
	Confidence   float64 `json:"confidence"`
}

type detectVehiclesResponse struct {
	Vehicles []domain.DetectedVehicle `json:"vehicles"`
}

// DetectLicensePlate gửi ảnh lên detector và trả về biển số đọc được.
// Trả về chuỗi rỗng nếu detector không đọc được biển số nào.
func (c *DetectorClient) DetectLicensePlate(ctx context.Context, fileName string, file io.Reader) (string, error) {
	body, err := c.postImage(ctx, "/detect-license-plate", fileName, file)
	if err != nil {
		return "", err
	}
	var result detectPlateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("lỗi parse kết quả nhận diện biển số: %w", err)
	}
	return result.LicensePlate, nil
}

// DetectVehicles gửi ảnh toàn cảnh bãi đỗ và trả về polygon các xe phát hiện được
func (c *DetectorClient) DetectVehicles(ctx context.Context, fileName string, file io.Reader) ([]domain.DetectedVehicle, error) {
	body, err := c.postImage(ctx, "/detect-vehicles", fileName, file)
	if err != nil {
		return nil, err
	}
	var result detectVehiclesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("lỗi parse kết quả phát hiện xe: %w", err)
	}
	return result.Vehicles, nil
}

// AnnotateImage gửi ảnh lên detector và trả về ảnh đã vẽ khung nhận diện,
// dùng cho dashboard xem trực quan kết quả.
func (c *DetectorClient) AnnotateImage(ctx context.Context, fileName string, file io.Reader) ([]byte, error) {
	return c.postImage(ctx, "/annotate-image", fileName, file)
}

func (c *DetectorClient) postImage(ctx context.Context, path string, fileName string, file io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("lỗi tạo form multipart: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("lỗi ghi dữ liệu ảnh vào form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lỗi đóng form multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("lỗi tạo request tới detector: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lỗi gọi detector %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lỗi đọc response từ detector: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector %s trả về status %d: %s", path, resp.StatusCode, string(body))
	}
	return body, nil
}
