// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.EventRepository       = (*EventRepository)(nil)
	_ repositories.EventImagesRepository = (*EventImagesRepository)(nil)
	_ repositories.QuestRepository       = (*QuestRepository)(nil)
	_ repositories.MerchandiseRepository = (*MerchandiseRepository)(nil)
	_ repositories.AdminUserRepository   = (*AdminUserRepository)(nil)
)

// EventRepository mocks repositories.EventRepository
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Create(ctx context.Context, event *models.Event) (primitive.ObjectID, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *EventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (m *EventRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *EventRepository) List(ctx context.Context, q repositories.EventQuery) ([]*models.Event, error) {
	args := m.Called(ctx, q)
	events, _ := args.Get(0).([]*models.Event)
	return events, args.Error(1)
}

func (m *EventRepository) Watch(ctx context.Context, id primitive.ObjectID, onChange func(*models.Event)) (repositories.Unsubscribe, error) {
	args := m.Called(ctx, id, onChange)
	unsub, _ := args.Get(0).(repositories.Unsubscribe)
	return unsub, args.Error(1)
}

// EventImagesRepository mocks repositories.EventImagesRepository
type EventImagesRepository struct {
	mock.Mock
}

func (m *EventImagesRepository) Put(ctx context.Context, images *models.EventImages) error {
	args := m.Called(ctx, images)
	return args.Error(0)
}

func (m *EventImagesRepository) FindByEventID(ctx context.Context, eventID primitive.ObjectID) (*models.EventImages, error) {
	args := m.Called(ctx, eventID)
	images, _ := args.Get(0).(*models.EventImages)
	return images, args.Error(1)
}

func (m *EventImagesRepository) Watch(ctx context.Context, eventID primitive.ObjectID, onChange func(*models.EventImages)) (repositories.Unsubscribe, error) {
	args := m.Called(ctx, eventID, onChange)
	unsub, _ := args.Get(0).(repositories.Unsubscribe)
	return unsub, args.Error(1)
}

// QuestRepository mocks repositories.QuestRepository
type QuestRepository struct {
	mock.Mock
}

func (m *QuestRepository) CreateList(ctx context.Context, list *models.QuestList, quests []*models.Quest) error {
	args := m.Called(ctx, list, quests)
	return args.Error(0)
}

func (m *QuestRepository) ReplaceQuests(ctx context.Context, listID primitive.ObjectID, quests []*models.Quest) error {
	args := m.Called(ctx, listID, quests)
	return args.Error(0)
}

func (m *QuestRepository) FindByListID(ctx context.Context, listID primitive.ObjectID) ([]*models.Quest, error) {
	args := m.Called(ctx, listID)
	quests, _ := args.Get(0).([]*models.Quest)
	return quests, args.Error(1)
}

// MerchandiseRepository mocks repositories.MerchandiseRepository
type MerchandiseRepository struct {
	mock.Mock
}

func (m *MerchandiseRepository) Create(ctx context.Context, item *models.Merchandise) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MerchandiseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Merchandise, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*models.Merchandise)
	return item, args.Error(1)
}

func (m *MerchandiseRepository) FindByOrganiser(ctx context.Context, organiserID string, page, limit int) ([]*models.Merchandise, error) {
	args := m.Called(ctx, organiserID, page, limit)
	items, _ := args.Get(0).([]*models.Merchandise)
	return items, args.Error(1)
}

func (m *MerchandiseRepository) Update(ctx context.Context, item *models.Merchandise) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MerchandiseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MerchandiseRepository) CountByOrganiser(ctx context.Context, organiserID string) (int64, error) {
	args := m.Called(ctx, organiserID)
	return args.Get(0).(int64), args.Error(1)
}

// AdminUserRepository mocks repositories.AdminUserRepository
type AdminUserRepository struct {
	mock.Mock
}

func (m *AdminUserRepository) Create(ctx context.Context, adminUser *models.AdminUser) error {
	args := m.Called(ctx, adminUser)
	return args.Error(0)
}

func (m *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	args := m.Called(ctx, email)
	admin, _ := args.Get(0).(*models.AdminUser)
	return admin, args.Error(1)
}

func (m *AdminUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error) {
	args := m.Called(ctx, id)
	admin, _ := args.Get(0).(*models.AdminUser)
	return admin, args.Error(1)
}
