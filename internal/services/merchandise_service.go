package services

import (
	"context"
	"errors"
	"strings"

	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
	"github.com/uniexp/uniexp-admin-backend/pkg/imagecodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// MerchandiseInput is the admin-editable part of an item. Numbers arrive
// loosely typed from forms.
type MerchandiseInput struct {
	Name          string `json:"name" form:"name"`
	Description   string `json:"description" form:"description"`
	PriceDiamonds any    `json:"priceDiamonds" form:"priceDiamonds"`
	Stock         any    `json:"stock" form:"stock"`
	// Image is the raw upload; nil keeps the current image on update
	Image []byte `json:"-" form:"-"`
}

// MerchandisePage is one page of a faculty's items
type MerchandisePage struct {
	Items []*models.Merchandise `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// MerchandiseService defines the interface for merchandise operations
type MerchandiseService interface {
	Create(ctx context.Context, sess session.Session, in MerchandiseInput) (*models.Merchandise, error)
	Get(ctx context.Context, sess session.Session, id primitive.ObjectID) (*models.Merchandise, error)
	List(ctx context.Context, sess session.Session, page, limit int) (*MerchandisePage, error)
	Update(ctx context.Context, sess session.Session, id primitive.ObjectID, in MerchandiseInput) (*models.Merchandise, error)
	Delete(ctx context.Context, sess session.Session, id primitive.ObjectID) error
}

type merchandiseService struct {
	repo     repositories.MerchandiseRepository
	codec    imagecodec.Codec
	maxBytes int
}

// NewMerchandiseService creates a new MerchandiseService. maxBytes bounds the encoded image.
func NewMerchandiseService(repo repositories.MerchandiseRepository, codec imagecodec.Codec, maxBytes int) MerchandiseService {
	return &merchandiseService{repo: repo, codec: codec, maxBytes: maxBytes}
}

func (s *merchandiseService) Create(ctx context.Context, sess session.Session, in MerchandiseInput) (*models.Merchandise, error) {
	if !sess.Valid() {
		return nil, session.ErrNoSession
	}
	item := &models.Merchandise{OrganiserID: sess.FacultyID}
	if err := s.apply(ctx, item, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		slog.Error("Failed to create merchandise", "organiserID", sess.FacultyID, "error", err)
		return nil, storeErr("create merchandise", err)
	}
	return item, nil
}

func (s *merchandiseService) Get(ctx context.Context, sess session.Session, id primitive.ObjectID) (*models.Merchandise, error) {
	if !sess.Valid() {
		return nil, session.ErrNoSession
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, storeErr("get merchandise", err)
	}
	if item.OrganiserID != sess.FacultyID {
		return nil, ErrForbidden
	}
	return item, nil
}

func (s *merchandiseService) List(ctx context.Context, sess session.Session, page, limit int) (*MerchandisePage, error) {
	if !sess.Valid() {
		return nil, session.ErrNoSession
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	items, err := s.repo.FindByOrganiser(ctx, sess.FacultyID, page, limit)
	if err != nil {
		return nil, storeErr("list merchandise", err)
	}
	total, err := s.repo.CountByOrganiser(ctx, sess.FacultyID)
	if err != nil {
		return nil, storeErr("count merchandise", err)
	}
	return &MerchandisePage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *merchandiseService) Update(ctx context.Context, sess session.Session, id primitive.ObjectID, in MerchandiseInput) (*models.Merchandise, error) {
	item, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, item, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, storeErr("update merchandise", err)
	}
	return item, nil
}

func (s *merchandiseService) Delete(ctx context.Context, sess session.Session, id primitive.ObjectID) error {
	if _, err := s.Get(ctx, sess, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		return storeErr("delete merchandise", err)
	}
	slog.Info("Merchandise deleted", "id", id.Hex(), "organiserID", sess.FacultyID)
	return nil
}

// apply validates in and copies it onto item
func (s *merchandiseService) apply(ctx context.Context, item *models.Merchandise, in MerchandiseInput) error {
	errs := ValidateMerchandise(in)
	if item.Image == "" && len(in.Image) == 0 {
		errs.Add("image", "Image is required")
	}
	if !errs.Empty() {
		return errs
	}
	if len(in.Image) > 0 {
		payload, err := s.codec.Encode(ctx, in.Image, imagecodec.Options{Folder: "merchandise", MaxBytes: s.maxBytes})
		if err != nil {
			if errors.Is(err, imagecodec.ErrImageTooLarge) || errors.Is(err, imagecodec.ErrNotAnImage) {
				return validation.Errors{"image": imageMessage(err)}
			}
			return err
		}
		item.Image = payload
	}
	item.Name = strings.TrimSpace(in.Name)
	item.Description = strings.TrimSpace(in.Description)
	item.PriceDiamonds, _ = validation.Int(in.PriceDiamonds)
	item.Stock, _ = validation.Int(in.Stock)
	return nil
}

// ValidateMerchandise checks the text and number fields of an item
func ValidateMerchandise(in MerchandiseInput) validation.Errors {
	errs := validation.Errors{}
	if strings.TrimSpace(in.Name) == "" {
		errs.Add("name", "Name is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		errs.Add("description", "Description is required")
	}
	if _, msg := validation.PositiveInt(in.PriceDiamonds, "Price"); msg != "" {
		errs.Add("priceDiamonds", msg)
	}
	switch {
	case validation.Blank(in.Stock):
		errs.Add("stock", "Stock is required")
	default:
		n, err := validation.Int(in.Stock)
		if err != nil {
			errs.Add("stock", "Stock must be a number")
		} else if n < 0 {
			errs.Add("stock", "Stock cannot be negative")
		}
	}
	return errs
}

func imageMessage(err error) string {
	if errors.Is(err, imagecodec.ErrImageTooLarge) {
		return "Image must be 50KB or smaller"
	}
	return "Please upload an image file"
}
