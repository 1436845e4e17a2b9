// Package validators holds the per-entity request gates mounted in
// front of the CRUD handlers.
package validators

import (
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/mohamedhany/eshop-api/internal/validation"
)

// slugFromName derives the slug whenever a name is submitted.
func slugFromName(field string) func(ctx *gin.Context, body map[string]any) {
	return func(_ *gin.Context, body map[string]any) {
		if s, ok := body[field].(string); ok && s != "" {
			body["slug"] = slug.Make(s)
		}
	}
}

func idParam(msg string) validation.Rule {
	return validation.Rule{
		Source: validation.Param,
		Field:  "id",
		Checks: []validation.Check{validation.IsUUID(msg)},
	}
}

func GetCategory() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid category id format"))
}

func CreateCategory() gin.HandlerFunc {
	return validation.Gate(validation.Rule{
		Field: "name",
		Checks: []validation.Check{
			validation.Required("Category required"),
			validation.MinLen(3, "Too short category name"),
			validation.MaxLen(32, "Too long category name"),
		},
		Mutate: slugFromName("name"),
	})
}

func UpdateCategory() gin.HandlerFunc {
	return validation.Gate(
		idParam("Invalid category id format"),
		validation.Rule{
			Field:    "name",
			Optional: true,
			Mutate:   slugFromName("name"),
		},
	)
}

func DeleteCategory() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid category id format"))
}

func GetSubCategory() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid subCategory id format"))
}

// CreateSubCategory also backfills the parent category from the nested
// route path when the body omits it.
func CreateSubCategory() gin.HandlerFunc {
	return validation.Gate(
		validation.Rule{
			Field: "category",
			Mutate: func(ctx *gin.Context, body map[string]any) {
				if s, _ := body["category"].(string); s == "" {
					if parent := ctx.Param("id"); parent != "" {
						body["category"] = parent
					}
				}
			},
		},
		validation.Rule{
			Field: "name",
			Checks: []validation.Check{
				validation.Required("SubCategory required"),
				validation.MinLen(2, "Too short subCategory name"),
				validation.MaxLen(32, "Too long subCategory name"),
			},
			Mutate: slugFromName("name"),
		},
		validation.Rule{
			Field: "category",
			Checks: []validation.Check{
				validation.Required("SubCategory must be belong to a category"),
				validation.IsUUID("Invalid Category id format"),
			},
		},
	)
}

func UpdateSubCategory() gin.HandlerFunc {
	return validation.Gate(
		idParam("Invalid subCategory id format"),
		validation.Rule{
			Field:    "name",
			Optional: true,
			Mutate:   slugFromName("name"),
		},
	)
}

func DeleteSubCategory() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid subCategory id format"))
}

func GetBrand() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid Brand id format"))
}

func CreateBrand() gin.HandlerFunc {
	return validation.Gate(validation.Rule{
		Field: "name",
		Checks: []validation.Check{
			validation.Required("Brand required"),
			validation.MinLen(3, "Too short Brand name"),
			validation.MaxLen(32, "Too long Brand name"),
		},
		Mutate: slugFromName("name"),
	})
}

func UpdateBrand() gin.HandlerFunc {
	return validation.Gate(
		idParam("Invalid Brand id format"),
		validation.Rule{
			Field:    "name",
			Optional: true,
			Mutate:   slugFromName("name"),
		},
	)
}

func DeleteBrand() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid Brand id format"))
}

func GetProduct() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid ID formate"))
}

func CreateProduct() gin.HandlerFunc {
	return validation.Gate(
		validation.Rule{
			Field: "title",
			Checks: []validation.Check{
				validation.Required("Product required"),
				validation.MinLen(3, "must be at least 3 chars"),
			},
			Mutate: slugFromName("title"),
		},
		validation.Rule{
			Field: "description",
			Checks: []validation.Check{
				validation.Required("Product description is required"),
				validation.MaxLen(2000, "Too long description"),
			},
		},
		validation.Rule{
			Field: "quantity",
			Checks: []validation.Check{
				validation.Required("Product quantity is required"),
				validation.IsNumeric("Product quantity must be a number"),
			},
		},
		validation.Rule{
			Field:    "sold",
			Optional: true,
			Checks:   []validation.Check{validation.IsNumeric("Product sold must be a number")},
		},
		validation.Rule{
			Field: "price",
			Checks: []validation.Check{
				validation.Required("Product price is required"),
				validation.IsNumeric("Product price must be a number"),
			},
		},
		validation.Rule{
			Field:    "priceAfterDiscount",
			Optional: true,
			Checks: []validation.Check{
				validation.IsNumeric("Product priceAfterDiscount must be a number"),
				validation.Custom("lt_price", "priceAfterDiscount must be lower than price", discountBelowPrice),
			},
		},
		validation.Rule{
			Field:    "colors",
			Optional: true,
			Checks:   []validation.Check{validation.IsArray("availableColors should be array of string")},
		},
		validation.Rule{
			Field:  "imageCover",
			Checks: []validation.Check{validation.Required("Product imageCover is required")},
		},
		validation.Rule{
			Field:    "images",
			Optional: true,
			Checks:   []validation.Check{validation.IsArray("images should be array of string")},
		},
		validation.Rule{
			Field: "category",
			Checks: []validation.Check{
				validation.Required("Product must be belong to a category"),
				validation.IsUUID("Invalid ID formate"),
			},
		},
		validation.Rule{
			Field:    "brand",
			Optional: true,
			Checks:   []validation.Check{validation.IsUUID("Invalid ID formate")},
		},
		validation.Rule{
			Field:    "ratingsAverage",
			Optional: true,
			Checks: []validation.Check{
				validation.IsNumeric("ratingsAverage must be a number"),
				validation.Custom("gte", "Rating must be above or equal 1.0", ratingAtLeastOne),
				validation.Custom("lte", "Rating must be below or equal 5.0", ratingAtMostFive),
			},
		},
		validation.Rule{
			Field:    "ratingsQuantity",
			Optional: true,
			Checks:   []validation.Check{validation.IsNumeric("ratingsQuantity must be a number")},
		},
	)
}

func UpdateProduct() gin.HandlerFunc {
	return validation.Gate(
		idParam("Invalid ID formate"),
		validation.Rule{
			Field:    "title",
			Optional: true,
			Mutate:   slugFromName("title"),
		},
	)
}

func DeleteProduct() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid id format"))
}

func discountBelowPrice(value any, body map[string]any) bool {
	discount, ok := asFloat(value)

	if !ok {
		return false
	}

	price, ok := asFloat(body["price"])

	if !ok {
		return false
	}

	return discount < price
}

func ratingAtLeastOne(value any, _ map[string]any) bool {
	v, ok := asFloat(value)

	return ok && v >= 1.0
}

func ratingAtMostFive(value any, _ map[string]any) bool {
	v, ok := asFloat(value)

	return ok && v <= 5.0
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}

	return 0, false
}
