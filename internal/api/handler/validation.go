package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"storeops/internal/dto"
)

var registerOnce sync.Once

// RegisterValidators 注册自定义结构校验，进程内只执行一次
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterStructValidation(locationPair, dto.Location{})
	})
}

// locationPair lat 与 lng 必须同时出现或同时缺省
func locationPair(sl validator.StructLevel) {
	loc := sl.Current().Interface().(dto.Location)
	if (loc.Lat == nil) != (loc.Lng == nil) {
		sl.ReportError(loc.Lat, "Lat", "lat", "latlng", "")
		sl.ReportError(loc.Lng, "Lng", "lng", "latlng", "")
	}
}
