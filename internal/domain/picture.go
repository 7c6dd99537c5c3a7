package domain

import "time"

type CarPictureType string

const (
	CarPictureTypeFront CarPictureType = "front"
	CarPictureTypeBack  CarPictureType = "back"
	CarPictureTypeSide  CarPictureType = "side"
	CarPictureTypeOther CarPictureType = "other"
)

var AllCarPictureTypes = []CarPictureType{
	CarPictureTypeFront,
	CarPictureTypeBack,
	CarPictureTypeSide,
	CarPictureTypeOther,
}

func (t CarPictureType) IsValid() bool {
	for _, known := range AllCarPictureTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Picture struct {
	ID          int32          `json:"id"`
	Src         string         `json:"src"`
	Description string         `json:"description"`
	Title       string         `json:"title"`
	Type        CarPictureType `json:"type"`
	Date        time.Time      `json:"date"`
	CarID       int32          `json:"car_id"`
	CreatedOn   time.Time      `json:"created_on"`
	UpdatedOn   time.Time      `json:"updated_on"`
}
