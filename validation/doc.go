// Package validation checks configuration and projected records.
//
// Struct tags cover single fields:
//
//	type FeedItem struct {
//	    Title string `json:"title" validate:"required"`
//	    Link  string `json:"link" validate:"required,url"`
//	}
//	err := validation.Validate(item)
//
// Cross-field rules use the collecting Validator:
//
//	v := validation.New()
//	v.Custom(cfg.AppID == 0 || cfg.PrivateKeyPath != "", "github.private_key_path", "is required with app_id")
//	err := v.Validate()
//
// Both return an INVALID_INPUT *errors.AppError listing every failing field.
package validation
