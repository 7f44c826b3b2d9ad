package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmuriuki/agrimarket-backend/api/responses"
	"github.com/dmuriuki/agrimarket-backend/api/validators"
	productsvc "github.com/dmuriuki/agrimarket-backend/internal/products"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/dmuriuki/agrimarket-backend/pkg/logger"
)

type listingImageRequest struct {
	MediaID *string `json:"media_id,omitempty"`
	URL     string  `json:"url" validate:"required,url"`
}

type createListingRequest struct {
	Name        string                `json:"name" validate:"required"`
	Description *string               `json:"description,omitempty"`
	Category    string                `json:"category" validate:"required"`
	Breed       *string               `json:"breed,omitempty"`
	Price       decimal.Decimal       `json:"price" validate:"required"`
	Unit        string                `json:"unit" validate:"required"`
	Quantity    int                   `json:"quantity" validate:"gte=0"`
	Location    *string               `json:"location,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Images      []listingImageRequest `json:"images,omitempty" validate:"omitempty,dive"`
}

type updateListingRequest struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Category    *string                `json:"category,omitempty"`
	Breed       *string                `json:"breed,omitempty"`
	Price       *decimal.Decimal       `json:"price,omitempty"`
	Unit        *string                `json:"unit,omitempty"`
	Quantity    *int                   `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Location    *string                `json:"location,omitempty"`
	Tags        *[]string              `json:"tags,omitempty"`
	Images      *[]listingImageRequest `json:"images,omitempty" validate:"omitempty,dive"`
}

// ListProducts serves the public catalogue with optional filters.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseProductListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetProduct serves one public listing detail.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// FarmerListListings returns the caller's own listings, unavailable ones included.
func FarmerListListings(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := parseProductListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.SellerID = &caller.UserID

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// FarmerCreateListing handles listing creation for farmers.
func FarmerCreateListing(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), caller.UserID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// FarmerUpdateListing applies partial changes to an owned listing.
func FarmerUpdateListing(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), caller.UserID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// FarmerDeleteListing soft-deletes an owned listing.
func FarmerDeleteListing(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), caller.UserID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func (req createListingRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(req.Category))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	unit, err := enums.ParseProductUnit(strings.TrimSpace(req.Unit))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
	}
	images, err := parseListingImages(req.Images)
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}

	return productsvc.CreateProductInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    category,
		Breed:       req.Breed,
		Price:       req.Price,
		Unit:        unit,
		Quantity:    req.Quantity,
		Location:    req.Location,
		Tags:        req.Tags,
		Images:      images,
	}, nil
}

func (req updateListingRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Breed:       req.Breed,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Location:    req.Location,
		Tags:        req.Tags,
	}

	if req.Category != nil {
		category, err := enums.ParseProductCategory(strings.TrimSpace(*req.Category))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	if req.Unit != nil {
		unit, err := enums.ParseProductUnit(strings.TrimSpace(*req.Unit))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
		}
		input.Unit = &unit
	}
	if req.Images != nil {
		images, err := parseListingImages(*req.Images)
		if err != nil {
			return productsvc.UpdateProductInput{}, err
		}
		input.Images = &images
	}
	return input, nil
}

func parseListingImages(images []listingImageRequest) ([]productsvc.ProductImageInput, error) {
	result := make([]productsvc.ProductImageInput, 0, len(images))
	for _, img := range images {
		input := productsvc.ProductImageInput{URL: strings.TrimSpace(img.URL)}
		if img.MediaID != nil && strings.TrimSpace(*img.MediaID) != "" {
			parsed, err := parseUUIDValue(*img.MediaID, "media id")
			if err != nil {
				return nil, err
			}
			input.MediaID = &parsed
		}
		result = append(result, input)
	}
	return result, nil
}

func parseProductListQuery(r *http.Request) (productsvc.ListProductsInput, error) {
	input := productsvc.ListProductsInput{}

	params, err := validators.QueryPagination(r)
	if err != nil {
		return input, err
	}
	input.Pagination = params

	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Filters.Category = &category
	}
	if raw := strings.TrimSpace(query.Get("county")); raw != "" {
		input.Filters.County = &raw
	}
	if raw := strings.TrimSpace(query.Get("price_min")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_min")
		}
		input.Filters.PriceMin = &value
	}
	if raw := strings.TrimSpace(query.Get("price_max")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_max")
		}
		input.Filters.PriceMax = &value
	}
	input.Filters.Query = strings.TrimSpace(query.Get("q"))

	return input, nil
}
