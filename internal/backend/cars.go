package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"caradmin/internal/domain/car"
)

func (c *Client) AllBrandsAndModels(ctx context.Context) ([]car.BrandModels, error) {
	var out []car.BrandModels
	err := c.getJSON(ctx, "/cars/all-brands-and-models", nil, &out)
	return out, err
}

func (c *Client) BrandsAndModelsWithCount(ctx context.Context) ([]car.BrandModels, error) {
	var out []car.BrandModels
	err := c.getJSON(ctx, "/cars/brands-and-models-with-count", nil, &out)
	return out, err
}

// ListCars calls GET /cars. Zero fields are not sent.
func (c *Client) ListCars(ctx context.Context, q car.ListQuery) ([]car.Car, error) {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	if q.Random {
		v.Set("random", "true")
	}
	var out []car.Car
	err := c.getJSON(ctx, "/cars", v, &out)
	return out, err
}

func (c *Client) SearchCars(ctx context.Context, req car.SearchRequest) ([]car.Car, error) {
	var out []car.Car
	err := c.sendJSON(ctx, http.MethodPost, "/cars/search", req, &out)
	return out, err
}

// AllCars includes sold and deleted cars.
func (c *Client) AllCars(ctx context.Context) ([]car.Car, error) {
	var out []car.Car
	err := c.getJSON(ctx, "/cars/all", nil, &out)
	return out, err
}

func (c *Client) CreateCar(ctx context.Context, in *car.Car) (*car.Car, error) {
	var out car.Car
	if err := c.sendJSON(ctx, http.MethodPost, "/cars/car", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCar(ctx context.Context, id int64) (*car.Car, error) {
	var out car.Car
	if err := c.getJSON(ctx, "/cars/car/"+itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCar patches a car. Files are managed by the image endpoints and are
// never sent here.
func (c *Client) UpdateCar(ctx context.Context, id int64, in car.Car) (*car.Car, error) {
	in.Files = nil
	var out car.Car
	if err := c.sendJSON(ctx, http.MethodPatch, "/cars/car/"+itoa(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCar(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/cars/car/"+itoa(id), nil, nil)
}

func (c *Client) RestoreCar(ctx context.Context, id int64) error {
	return c.getJSON(ctx, "/cars/car/"+itoa(id)+"/restore", nil, nil)
}

func (c *Client) MarkCarSold(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodPatch, "/cars/car/"+itoa(id)+"/mark-sold", struct{}{}, nil)
}

func (c *Client) MarkCarAvailable(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodPatch, "/cars/car/"+itoa(id)+"/mark-available", struct{}{}, nil)
}

func (c *Client) CarsByAdmin(ctx context.Context, adminID int64) ([]car.Car, error) {
	var out []car.Car
	err := c.getJSON(ctx, "/cars/by-admin/"+itoa(adminID), nil, &out)
	return out, err
}

// Upload is a file to be sent upstream. ID is set for files the backend
// already stores.
type Upload struct {
	ID      int64
	Name    string
	Content io.Reader
}

// UploadCarImages sends new images as multipart "images" parts. Files that
// already have an id are skipped; car.ErrNoImages is returned when nothing
// is left to send.
func (c *Client) UploadCarImages(ctx context.Context, carID int64, files []Upload) (*car.Car, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	sent := 0
	for _, f := range files {
		if f.ID != 0 || f.Content == nil {
			continue
		}
		part, err := mw.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, fmt.Errorf("multipart %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("multipart %s: %w", f.Name, err)
		}
		sent++
	}
	if sent == 0 {
		return nil, car.ErrNoImages
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out car.Car
	err := c.do(ctx, request{
		method:      http.MethodPatch,
		path:        "/cars/car/" + itoa(carID) + "/images",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCarImage(ctx context.Context, carID, fileID int64) error {
	if fileID <= 0 {
		return car.ErrInvalidFileID
	}
	return c.sendJSON(ctx, http.MethodDelete, "/cars/car/"+itoa(carID)+"/images/image/"+itoa(fileID), nil, nil)
}
