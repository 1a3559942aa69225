package handlers

import (
	"github.com/go-playground/validator/v10"
)

// RequestValidator 挂在 echo 实例上, 所有带 validate 标签的
// 请求体都在绑定后统一校验。
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
