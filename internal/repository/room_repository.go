package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teaching-load-api/internal/models"
)

// MaxRoomResults caps room search results.
const MaxRoomResults = 10

const roomSelect = `SELECT r.id, r.room_number, r.room_type, b.building_name, c.campus_name
FROM rooms r LEFT JOIN buildings b ON b.id = r.building_id LEFT JOIN campuses c ON c.id = b.campus_id`

// RoomRepository reads rooms together with their building and campus.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Search filters rooms by number, building name and campus name.
func (r *RoomRepository) Search(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	where, args := Build(And(
		containsIfSet("r.room_number", filter.Query),
		containsIfSet("b.building_name", filter.Building),
		containsIfSet("c.campus_name", filter.Campus),
	), 0)

	limit := filter.Limit
	if limit <= 0 || limit > MaxRoomResults {
		limit = MaxRoomResults
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY r.room_number ASC LIMIT %d", roomSelect, where, limit)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("search rooms: %w", err)
	}
	return rooms, nil
}

// FindByID fetches a room by ID.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	query := roomSelect + ` WHERE r.id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListNumbers returns every room number in ascending order.
func (r *RoomRepository) ListNumbers(ctx context.Context) ([]string, error) {
	const query = `SELECT room_number FROM rooms ORDER BY room_number ASC`
	var numbers []string
	if err := r.db.SelectContext(ctx, &numbers, query); err != nil {
		return nil, fmt.Errorf("list room numbers: %w", err)
	}
	return numbers, nil
}

func containsIfSet(column, value string) Predicate {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return Contains(column, value)
}
