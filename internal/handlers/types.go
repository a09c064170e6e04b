package handlers

// Error kinds reported in ErrorResponse.Error.
const (
	ErrKindInvalidUpload = "invalid_upload"
	ErrKindDecode        = "decode_failure"
	ErrKindInference     = "inference_failure"
	ErrKindBadRequest    = "bad_request"
	ErrKindNotFound      = "not_found"
	ErrKindDatabase      = "database_failure"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail"`
}

type HealthResponse struct {
	Status  string  `json:"status"`
	Classes int     `json:"classes"`
	ValAcc  float64 `json:"val_acc"`
	Method  string  `json:"method"`
}

type IdentifyResponse struct {
	Success        bool              `json:"success"`
	Part           Part              `json:"part"`
	Specifications map[string]string `json:"specifications"`
	Applications   []string          `json:"applications"`
	Pricing        Pricing           `json:"pricing"`
	Vendors        []VendorSummary   `json:"vendors"`
	Method         string            `json:"method"`
	Note           string            `json:"note"`
}

type Part struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	DetectedType string  `json:"detected_type"`
}

type Pricing struct {
	EstimatedRange string `json:"estimated_range"`
	Currency       string `json:"currency"`
}

type VendorSummary struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Rating   float64 `json:"rating"`
}

type VendorDetail struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Rating   float64 `json:"rating"`
	Email    string  `json:"email"`
}

type ProductSummary struct {
	ID           uint          `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	Price        float64       `json:"price"`
	Stock        int           `json:"stock"`
	Manufacturer string        `json:"manufacturer"`
	ImageURL     string        `json:"image_url"`
	Vendor       VendorSummary `json:"vendor"`
}

type ProductDetail struct {
	ID           uint         `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	Price        float64      `json:"price"`
	Stock        int          `json:"stock"`
	Manufacturer string       `json:"manufacturer"`
	ImageURL     string       `json:"image_url"`
	Vendor       VendorDetail `json:"vendor"`
}

type ProductListResponse struct {
	Success  bool             `json:"success"`
	Count    int              `json:"count"`
	Products []ProductSummary `json:"products"`
}

type ProductResponse struct {
	Success bool          `json:"success"`
	Product ProductDetail `json:"product"`
}

type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}
