package memory

import (
	"context"
	"fmt"
	"sort"

	"car-rental/internal/data/entity"

	"github.com/google/uuid"
)

type carRepository struct {
	store *Store
	tx    *state
}

func (r *carRepository) Create(ctx context.Context, car *entity.Car) error {
	return r.store.view(ctx, r.tx, func(st *state) error {
		if _, exists := st.cars[car.ID]; exists {
			return fmt.Errorf("create car %s: duplicate id", car.ID.String())
		}
		st.cars[car.ID] = *car
		return nil
	})
}

func (r *carRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	var found *entity.Car
	err := r.store.view(ctx, r.tx, func(st *state) error {
		if car, ok := st.cars[id]; ok {
			found = &car
		}
		return nil
	})
	return found, err
}

// FindByIDForUpdate needs no extra locking: transactions already hold the store lock.
func (r *carRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	return r.FindByID(ctx, id)
}

func (r *carRepository) FindAllActive(ctx context.Context) ([]*entity.Car, error) {
	return r.list(ctx, func(car *entity.Car) bool { return car.Active })
}

func (r *carRepository) FindAll(ctx context.Context) ([]*entity.Car, error) {
	return r.list(ctx, func(*entity.Car) bool { return true })
}

func (r *carRepository) list(ctx context.Context, keep func(*entity.Car) bool) ([]*entity.Car, error) {
	var cars []*entity.Car
	err := r.store.view(ctx, r.tx, func(st *state) error {
		for _, car := range st.cars {
			car := car
			if keep(&car) {
				cars = append(cars, &car)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(cars, func(i, j int) bool {
		if cars[i].CreatedAt.Equal(cars[j].CreatedAt) {
			return cars[i].ID.String() < cars[j].ID.String()
		}
		return cars[i].CreatedAt.Before(cars[j].CreatedAt)
	})
	return cars, nil
}

func (r *carRepository) Update(ctx context.Context, car *entity.Car) error {
	return r.store.view(ctx, r.tx, func(st *state) error {
		if _, ok := st.cars[car.ID]; !ok {
			return fmt.Errorf("car %s not found", car.ID.String())
		}
		st.cars[car.ID] = *car
		return nil
	})
}
