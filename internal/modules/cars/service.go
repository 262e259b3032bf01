package cars

import (
	"context"
	"time"

	"caradmin/internal/backend"
	"caradmin/internal/domain/car"
	"caradmin/internal/pkg/fileurl"
)

// Week is the window of the "added this week" counters.
const Week = 7 * 24 * time.Hour

// Upstream is the part of the backend client the cars screens use
type Upstream interface {
	AllBrandsAndModels(ctx context.Context) ([]car.BrandModels, error)
	BrandsAndModelsWithCount(ctx context.Context) ([]car.BrandModels, error)
	ListCars(ctx context.Context, q car.ListQuery) ([]car.Car, error)
	SearchCars(ctx context.Context, req car.SearchRequest) ([]car.Car, error)
	AllCars(ctx context.Context) ([]car.Car, error)
	GetCar(ctx context.Context, id int64) (*car.Car, error)
	CreateCar(ctx context.Context, in *car.Car) (*car.Car, error)
	UpdateCar(ctx context.Context, id int64, in car.Car) (*car.Car, error)
	DeleteCar(ctx context.Context, id int64) error
	RestoreCar(ctx context.Context, id int64) error
	MarkCarSold(ctx context.Context, id int64) error
	MarkCarAvailable(ctx context.Context, id int64) error
	CarsByAdmin(ctx context.Context, adminID int64) ([]car.Car, error)
	UploadCarImages(ctx context.Context, carID int64, files []backend.Upload) (*car.Car, error)
	DeleteCarImage(ctx context.Context, carID, fileID int64) error
}

type Service struct {
	apiURL string
	now    func() time.Time
}

// NewService takes the backend URL images are served from.
func NewService(apiURL string) *Service {
	return &Service{apiURL: apiURL, now: time.Now}
}

func (s *Service) resolve(c *car.Car) *car.Car {
	if c == nil {
		return nil
	}
	for i := range c.Files {
		c.Files[i].URL = fileurl.Resolve(s.apiURL, c.Files[i].Path)
	}
	return c
}

func (s *Service) resolveAll(list []car.Car) []car.Car {
	if list == nil {
		return []car.Car{}
	}
	for i := range list {
		s.resolve(&list[i])
	}
	return list
}

func (s *Service) List(ctx context.Context, api Upstream, q car.ListQuery) ([]car.Car, error) {
	list, err := api.ListCars(ctx, q)
	return s.resolveAll(list), err
}

func (s *Service) All(ctx context.Context, api Upstream) ([]car.Car, error) {
	list, err := api.AllCars(ctx)
	return s.resolveAll(list), err
}

func (s *Service) Search(ctx context.Context, api Upstream, req car.SearchRequest) ([]car.Car, error) {
	list, err := api.SearchCars(ctx, req)
	return s.resolveAll(list), err
}

// Brands returns brand -> models, with counts when withCount is set.
func (s *Service) Brands(ctx context.Context, api Upstream, withCount bool) ([]car.BrandModels, error) {
	var (
		out []car.BrandModels
		err error
	)
	if withCount {
		out, err = api.BrandsAndModelsWithCount(ctx)
	} else {
		out, err = api.AllBrandsAndModels(ctx)
	}
	if out == nil {
		out = []car.BrandModels{}
	}
	return out, err
}

func (s *Service) Get(ctx context.Context, api Upstream, id int64) (*car.Car, error) {
	c, err := api.GetCar(ctx, id)
	return s.resolve(c), err
}

func (s *Service) Create(ctx context.Context, api Upstream, req CarRequest) (*car.Car, error) {
	in := req.toCar()
	c, err := api.CreateCar(ctx, &in)
	return s.resolve(c), err
}

// Update saves car fields. Images are managed through the image endpoints,
// the backend client drops files from the body.
func (s *Service) Update(ctx context.Context, api Upstream, id int64, req CarRequest) (*car.Car, error) {
	c, err := api.UpdateCar(ctx, id, req.toCar())
	return s.resolve(c), err
}

func (s *Service) Delete(ctx context.Context, api Upstream, id int64) error {
	return api.DeleteCar(ctx, id)
}

func (s *Service) Restore(ctx context.Context, api Upstream, id int64) error {
	return api.RestoreCar(ctx, id)
}

// SetSold marks a car sold or back on sale and returns the fresh record.
func (s *Service) SetSold(ctx context.Context, api Upstream, id int64, sold bool) (*car.Car, error) {
	var err error
	if sold {
		err = api.MarkCarSold(ctx, id)
	} else {
		err = api.MarkCarAvailable(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, api, id)
}

// ByAdmin lists an admin's cars with the weekly counters.
func (s *Service) ByAdmin(ctx context.Context, api Upstream, adminID int64) (*AdminCars, error) {
	list, err := api.CarsByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	list = s.resolveAll(list)

	since := s.now().Add(-Week)
	out := &AdminCars{AdminID: adminID, Cars: list}
	for i := range list {
		if list[i].AddedSince(since) {
			out.AddedWeek++
		}
		if list[i].IsSold {
			out.SoldCount++
		}
		if list[i].Listed() {
			out.ListedOnly++
		}
	}
	return out, nil
}

func (s *Service) UploadImages(ctx context.Context, api Upstream, id int64, files []backend.Upload) (*car.Car, error) {
	c, err := api.UploadCarImages(ctx, id, files)
	return s.resolve(c), err
}

func (s *Service) DeleteImage(ctx context.Context, api Upstream, id, fileID int64) error {
	return api.DeleteCarImage(ctx, id, fileID)
}
