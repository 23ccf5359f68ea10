package repository

import (
	"context"
	"errors"
	"fmt"

	"car-rental/internal/data/entity"
	"car-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CarRepository interface {
	Create(ctx context.Context, car *entity.Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error)
	// FindByIDForUpdate locks the car row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Car, error)
	FindAllActive(ctx context.Context) ([]*entity.Car, error)
	FindAll(ctx context.Context) ([]*entity.Car, error)
	Update(ctx context.Context, car *entity.Car) error
}

type carRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewCarRepository(db database.DBTX, log *zap.Logger) CarRepository {
	return &carRepository{
		db:  db,
		log: log.With(zap.String("repository", "car")),
	}
}

const carColumns = `id, brand, model, daily_rate, image_path, active, created_at, updated_at`

func (r *carRepository) Create(ctx context.Context, car *entity.Car) error {
	query := `
		INSERT INTO cars (id, brand, model, daily_rate, image_path, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		car.ID,
		car.Brand,
		car.Model,
		car.DailyRate,
		car.ImagePath,
		car.Active,
		car.CreatedAt,
		car.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create car",
			zap.Error(err),
			zap.String("brand", car.Brand),
			zap.String("model", car.Model),
		)
		return fmt.Errorf("create car %s %s: %w", car.Brand, car.Model, classify(err))
	}

	return nil
}

func (r *carRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *carRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *carRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Car, error) {
	car, err := scanCar(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find car by ID",
			zap.Error(err),
			zap.String("car_id", id.String()),
		)
		return nil, fmt.Errorf("find car by ID %s: %w", id.String(), classify(err))
	}

	return car, nil
}

func (r *carRepository) FindAllActive(ctx context.Context) ([]*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE active = TRUE ORDER BY created_at, id`
	return r.findMany(ctx, query, "find active cars")
}

func (r *carRepository) FindAll(ctx context.Context) ([]*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY created_at, id`
	return r.findMany(ctx, query, "find all cars")
}

func (r *carRepository) findMany(ctx context.Context, query, operation string) ([]*entity.Car, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to "+operation, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	var cars []*entity.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			r.log.Error("Failed to scan car row", zap.Error(err))
			return nil, fmt.Errorf("scan car row: %w", err)
		}
		cars = append(cars, car)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return cars, nil
}

func (r *carRepository) Update(ctx context.Context, car *entity.Car) error {
	query := `
		UPDATE cars
		SET brand = $2, model = $3, daily_rate = $4, image_path = $5, active = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		car.ID,
		car.Brand,
		car.Model,
		car.DailyRate,
		car.ImagePath,
		car.Active,
		car.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update car",
			zap.Error(err),
			zap.String("car_id", car.ID.String()),
		)
		return fmt.Errorf("update car %s: %w", car.ID.String(), classify(err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("car %s not found", car.ID.String())
	}

	return nil
}

func scanCar(row pgx.Row) (*entity.Car, error) {
	var car entity.Car
	err := row.Scan(
		&car.ID,
		&car.Brand,
		&car.Model,
		&car.DailyRate,
		&car.ImagePath,
		&car.Active,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &car, nil
}
