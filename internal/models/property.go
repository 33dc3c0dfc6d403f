package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Categories is the fixed set of listing categories.
var Categories = []string{
	"beach", "cabins", "tropical", "views", "lake",
	"design", "mansions", "tiny", "camping", "skiing",
}

// RoomTypes is the fixed set of room types.
var RoomTypes = []string{"entire-home", "private-room", "shared-room"}

// KnownAmenities lists the common amenity tags used for demo listings.
// Amenities are free-form, so other tags are accepted as submitted.
var KnownAmenities = []string{
	"wifi", "kitchen", "parking", "pool", "hot-tub", "washer", "dryer",
	"ac", "heating", "workspace", "tv", "bbq", "fireplace",
}

// MaxListingImages bounds the number of images attached to one listing.
const MaxListingImages = 10

func IsValidCategory(c string) bool { return slices.Contains(Categories, c) }

func IsValidRoomType(r string) bool { return slices.Contains(RoomTypes, r) }

// Address is the structured postal address of a listing.
type Address struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Country string `json:"country" bson:"country"`
	ZipCode string `json:"zipCode" bson:"zipCode"`
}

// PropertyImage is one uploaded listing photo. Position keeps the submitted order.
type PropertyImage struct {
	ID         uint   `gorm:"primaryKey" json:"-" bson:"-"`
	PropertyID string `gorm:"type:varchar(36);index;not null" json:"-" bson:"-"`
	Position   int    `gorm:"not null;default:0" json:"-" bson:"-"`
	URL        string `gorm:"not null" json:"url" bson:"url"`
	StorageID  string `gorm:"not null" json:"storageId" bson:"storageId"`
}

// Review is a guest review embedded in a listing.
type Review struct {
	ID         uint         `gorm:"primaryKey" json:"-" bson:"-"`
	PropertyID string       `gorm:"type:varchar(36);index;not null" json:"-" bson:"-"`
	UserID     string       `gorm:"type:varchar(36);index;not null" json:"-" bson:"user"`
	User       *User        `gorm:"foreignKey:UserID" json:"-" bson:"-"`
	Reviewer   *UserSummary `gorm:"-" json:"user,omitempty" bson:"-"`
	Rating     int          `gorm:"not null" json:"rating" bson:"rating"`
	Comment    string       `json:"comment" bson:"comment"`
	CreatedAt  time.Time    `json:"createdAt" bson:"createdAt"`
}

// AfterFind exposes the preloaded reviewer identity.
func (r *Review) AfterFind(_ *gorm.DB) error {
	if r.User != nil {
		r.Reviewer = r.User.Summary()
	}
	return nil
}

// Property is a rental listing owned by exactly one host.
type Property struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	Title       string          `gorm:"not null" json:"title" bson:"title"`
	Description string          `gorm:"type:text;not null" json:"description" bson:"description"`
	Price       float64         `gorm:"not null;index" json:"price" bson:"price"`
	Location    string          `gorm:"not null;index" json:"location" bson:"location"`
	Address     Address         `gorm:"embedded;embeddedPrefix:address_" json:"address" bson:"address"`
	Category    string          `gorm:"not null;index" json:"category" bson:"category"`
	RoomType    string          `gorm:"not null" json:"roomType" bson:"roomType"`
	Beds        int             `gorm:"not null" json:"beds" bson:"beds"`
	Bedrooms    int             `gorm:"not null" json:"bedrooms" bson:"bedrooms"`
	Bathrooms   float64         `gorm:"not null" json:"bathrooms" bson:"bathrooms"`
	MaxGuests   int             `gorm:"not null" json:"maxGuests" bson:"maxGuests"`
	Amenities   []string        `gorm:"serializer:json;type:text" json:"amenities" bson:"amenities"`
	Images      []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images" bson:"images"`
	Reviews     []Review        `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"reviews" bson:"reviews"`
	HostID      string          `gorm:"type:varchar(36);not null;index" json:"-" bson:"host"`
	Host        *User           `gorm:"foreignKey:HostID" json:"-" bson:"-"`
	HostInfo    *UserSummary    `gorm:"-" json:"host,omitempty" bson:"-"`
	Rating      float64         `gorm:"not null;default:0" json:"rating" bson:"rating"`
	IsAvailable bool            `gorm:"not null;index" json:"isAvailable" bson:"isAvailable"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// BeforeCreate assigns an opaque ID and image ordering.
func (p *Property) BeforeCreate(_ *gorm.DB) error {
	p.Prepare()
	return nil
}

// AfterFind exposes the preloaded host identity.
func (p *Property) AfterFind(_ *gorm.DB) error {
	if p.Host != nil {
		p.HostInfo = p.Host.Summary()
	}
	return nil
}

// Prepare fills generated fields for stores without gorm hooks.
func (p *Property) Prepare() {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Images {
		p.Images[i].Position = i
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
}
