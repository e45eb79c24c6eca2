// Package geo 提供地理坐标与大圆距离计算（Haversine 公式）。
package geo

import (
	"fmt"
	"math"
)

// earthRadiusKm 是地球平均半径（公里）。
const earthRadiusKm = 6371.0

// Coordinate 是一个经纬度坐标，单位为度。
type Coordinate struct {
	Lat float64 `json:"lat"` // 纬度，合法范围 [-90, 90]
	Lng float64 `json:"lng"` // 经度，合法范围 [-180, 180]
}

// InvalidCoordinateError 表示坐标超出合法范围。
type InvalidCoordinateError struct {
	Lat float64
	Lng float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("geo: invalid coordinate (lat=%v, lng=%v)", e.Lat, e.Lng)
}

// Validate 校验坐标是否在合法范围内。
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return &InvalidCoordinateError{Lat: c.Lat, Lng: c.Lng}
	}
	return nil
}

// Haversine 计算两个坐标之间的大圆距离，返回公里数。
//
// 约定：
//   - 对称：Haversine(a, b) == Haversine(b, a)
//   - 相同坐标返回 0
//   - 任一坐标超出范围时返回 InvalidCoordinateError
func Haversine(a, b Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	if a.Lat == b.Lat && a.Lng == b.Lng {
		return 0, nil
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c, nil
}
