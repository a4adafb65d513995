package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	userRepo    repository.UserRepository
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, userRepo repository.UserRepository) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
	}
}

func (s *VehicleService) RegisterVehicle(ctx context.Context, dto domain.VehicleDTO) (*domain.Vehicle, error) {
	if _, err := s.userRepo.FindByID(ctx, dto.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("người dùng với ID %d không tồn tại", dto.UserID)
		}
		return nil, fmt.Errorf("lỗi kiểm tra người dùng: %w", err)
	}

	vehicle := &domain.Vehicle{
		UserID:       dto.UserID,
		LicensePlate: dto.LicensePlate,
		Type:         domain.VehicleType(dto.Type),
	}
	return s.vehicleRepo.Create(ctx, vehicle)
}

func (s *VehicleService) GetVehicleByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	return s.vehicleRepo.FindByID(ctx, id)
}

func (s *VehicleService) GetVehicleByLicensePlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	return s.vehicleRepo.FindByLicensePlate(ctx, plate)
}

func (s *VehicleService) GetVehiclesByUserID(ctx context.Context, userID int) ([]domain.Vehicle, error) {
	return s.vehicleRepo.FindByUserID(ctx, userID)
}

func (s *VehicleService) UpdateVehicle(ctx context.Context, id int, dto domain.VehicleDTO) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	vehicle.UserID = dto.UserID
	vehicle.LicensePlate = dto.LicensePlate
	vehicle.Type = domain.VehicleType(dto.Type)
	return s.vehicleRepo.Update(ctx, vehicle)
}

func (s *VehicleService) DeleteVehicle(ctx context.Context, id int) error {
	return s.vehicleRepo.Delete(ctx, id)
}
