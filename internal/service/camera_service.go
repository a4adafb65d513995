package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

var ErrPlateNotDetected = errors.New("không đọc được biển số từ ảnh")
var ErrCameraNotBoundToLot = errors.New("camera chưa được gán vào bãi đỗ nào")

// CameraService quản lý camera và các luồng xử lý ảnh: đọc biển số để tự
// quyết định vào/ra, và quét toàn cảnh để đối soát trạng thái chỗ đỗ.
type CameraService struct {
	cameraRepo       repository.CameraRepository
	vehicleRepo      repository.VehicleRepository
	sessionRepo      repository.ParkingSessionRepository
	detectorClient   *DetectorClient
	detectionService *DetectionService
	occupancyService *OccupancyService
}

func NewCameraService(
	cameraRepo repository.CameraRepository,
	vehicleRepo repository.VehicleRepository,
	sessionRepo repository.ParkingSessionRepository,
	detectorClient *DetectorClient,
	detectionService *DetectionService,
	occupancyService *OccupancyService,
) *CameraService {
	return &CameraService{
		cameraRepo:       cameraRepo,
		vehicleRepo:      vehicleRepo,
		sessionRepo:      sessionRepo,
		detectorClient:   detectorClient,
		detectionService: detectionService,
		occupancyService: occupancyService,
	}
}

// --- CRUD camera ---

func (s *CameraService) CreateCamera(ctx context.Context, dto domain.CameraDTO) (*domain.Camera, error) {
	status := domain.CameraActive
	if dto.Status != "" {
		status = domain.CameraStatus(dto.Status)
	}
	camera := &domain.Camera{
		Name:        dto.Name,
		StreamURL:   dto.StreamURL,
		CameraType:  domain.CameraType(dto.CameraType),
		Status:      status,
		Description: dto.Description,
		Location:    dto.Location,
	}
	if dto.LotID != nil {
		camera.LotID.SetValid(int64(*dto.LotID))
	}
	return s.cameraRepo.Create(ctx, camera)
}

func (s *CameraService) GetCameraByID(ctx context.Context, id int) (*domain.Camera, error) {
	return s.cameraRepo.FindByID(ctx, id)
}

func (s *CameraService) GetAllCameras(ctx context.Context) ([]domain.Camera, error) {
	return s.cameraRepo.FindAll(ctx)
}

func (s *CameraService) UpdateCamera(ctx context.Context, id int, dto domain.CameraDTO) (*domain.Camera, error) {
	camera, err := s.cameraRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	camera.Name = dto.Name
	camera.StreamURL = dto.StreamURL
	camera.CameraType = domain.CameraType(dto.CameraType)
	if dto.Status != "" {
		camera.Status = domain.CameraStatus(dto.Status)
	}
	camera.Description = dto.Description
	camera.Location = dto.Location
	if dto.LotID != nil {
		camera.LotID.SetValid(int64(*dto.LotID))
	} else {
		camera.LotID.Valid = false
	}
	return s.cameraRepo.Update(ctx, camera)
}

func (s *CameraService) DeleteCamera(ctx context.Context, id int) error {
	return s.cameraRepo.Delete(ctx, id)
}

// --- Luồng xử lý ảnh ---

// ProcessVehicleImage đọc biển số từ ảnh cổng và tự quyết định chiều:
// xe đang có phiên active thì xử lý ra, ngược lại xử lý vào.
func (s *CameraService) ProcessVehicleImage(ctx context.Context, cameraID int, fileName string, file io.Reader) (*domain.EntryResult, *domain.ExitResult, error) {
	camera, err := s.cameraRepo.FindByID(ctx, cameraID)
	if err != nil {
		return nil, nil, err
	}
	if !camera.LotID.Valid {
		return nil, nil, ErrCameraNotBoundToLot
	}

	plate, err := s.detectorClient.DetectLicensePlate(ctx, fileName, file)
	if err != nil {
		return nil, nil, fmt.Errorf("lỗi nhận diện biển số: %w", err)
	}
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return nil, nil, ErrPlateNotDetected
	}

	flag, err := s.decideFlag(ctx, plate)
	if err != nil {
		return nil, nil, err
	}

	lotID := int(camera.LotID.Int64)
	dto := domain.VehicleDetectionDTO{
		LicensePlate: plate,
		Flag:         flag,
		LotID:        &lotID,
	}
	return s.detectionService.HandleDetection(ctx, dto)
}

func (s *CameraService) decideFlag(ctx context.Context, plate string) (domain.DetectionFlag, error) {
	vehicle, err := s.vehicleRepo.FindByLicensePlate(ctx, plate)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("lỗi tra cứu xe: %w", err)
	}

	var session *domain.ParkingSession
	if vehicle != nil {
		session, err = s.sessionRepo.FindActiveByVehicleID(ctx, vehicle.ID)
	} else {
		session, err = s.sessionRepo.FindActiveByPlate(ctx, plate)
	}
	if err != nil && !errors.Is(err, repository.ErrNoActiveSession) {
		return "", fmt.Errorf("lỗi kiểm tra phiên đang hoạt động: %w", err)
	}
	if session != nil {
		return domain.FlagExit, nil
	}
	return domain.FlagEntry, nil
}

// AnnotateImage chuyển tiếp ảnh sang detector và trả về ảnh đã vẽ khung
// nhận diện. Chỉ yêu cầu camera tồn tại, không cần gán bãi.
func (s *CameraService) AnnotateImage(ctx context.Context, cameraID int, fileName string, file io.Reader) ([]byte, error) {
	if _, err := s.cameraRepo.FindByID(ctx, cameraID); err != nil {
		return nil, err
	}
	annotated, err := s.detectorClient.AnnotateImage(ctx, fileName, file)
	if err != nil {
		return nil, fmt.Errorf("lỗi annotate ảnh: %w", err)
	}
	return annotated, nil
}

// DetectParkingSpace quét ảnh toàn cảnh bãi của camera và đối soát trạng thái
// các chỗ đỗ theo polygon các xe phát hiện được.
func (s *CameraService) DetectParkingSpace(ctx context.Context, cameraID int, fileName string, file io.Reader) (*domain.ReconcileResult, error) {
	camera, err := s.cameraRepo.FindByID(ctx, cameraID)
	if err != nil {
		return nil, err
	}
	if !camera.LotID.Valid {
		return nil, ErrCameraNotBoundToLot
	}

	vehicles, err := s.detectorClient.DetectVehicles(ctx, fileName, file)
	if err != nil {
		return nil, fmt.Errorf("lỗi phát hiện xe trong khung hình: %w", err)
	}
	return s.occupancyService.Reconcile(ctx, int(camera.LotID.Int64), vehicles)
}
