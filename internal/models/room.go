package models

// Room represents a bookable room. Building and campus names come from joined tables.
type Room struct {
	ID           string  `db:"id" json:"room_id"`
	Number       string  `db:"room_number" json:"room_number"`
	Type         string  `db:"room_type" json:"room_type"`
	BuildingName *string `db:"building_name" json:"building_name,omitempty"`
	CampusName   *string `db:"campus_name" json:"campus_name,omitempty"`
}

// RoomFilter captures room search options.
type RoomFilter struct {
	Query    string
	Building string
	Campus   string
	Limit    int
}
