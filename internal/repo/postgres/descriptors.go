package postgres

import "github.com/mohamedhany/eshop-api/internal/query"

// One descriptor per collection. Field order is response column order;
// "version" is the internal bookkeeping field hidden from default
// projections.

func CategoriesDescriptor() query.Descriptor {
	return query.Descriptor{
		Table: "categories",
		Fields: []query.Field{
			{Name: "id", Column: "id"},
			{Name: "name", Column: "name"},
			{Name: "slug", Column: "slug"},
			{Name: "image", Column: "image"},
			{Name: "createdAt", Column: "created_at"},
			{Name: "updatedAt", Column: "updated_at"},
			{Name: "version", Column: "version"},
		},
		Hidden:       []string{"version"},
		SearchFields: []string{"name"},
		Insertable:   []string{"name", "slug", "image"},
		Updatable:    []string{"name", "slug", "image"},
	}
}

func SubCategoriesDescriptor() query.Descriptor {
	return query.Descriptor{
		Table: "subcategories",
		Fields: []query.Field{
			{Name: "id", Column: "id"},
			{Name: "name", Column: "name"},
			{Name: "slug", Column: "slug"},
			{Name: "category", Column: "category_id"},
			{Name: "createdAt", Column: "created_at"},
			{Name: "updatedAt", Column: "updated_at"},
			{Name: "version", Column: "version"},
		},
		Hidden:       []string{"version"},
		SearchFields: []string{"name"},
		Insertable:   []string{"name", "slug", "category"},
		Updatable:    []string{"name", "slug", "category"},
	}
}

func BrandsDescriptor() query.Descriptor {
	return query.Descriptor{
		Table: "brands",
		Fields: []query.Field{
			{Name: "id", Column: "id"},
			{Name: "name", Column: "name"},
			{Name: "slug", Column: "slug"},
			{Name: "image", Column: "image"},
			{Name: "createdAt", Column: "created_at"},
			{Name: "updatedAt", Column: "updated_at"},
			{Name: "version", Column: "version"},
		},
		Hidden:       []string{"version"},
		SearchFields: []string{"name"},
		Insertable:   []string{"name", "slug", "image"},
		Updatable:    []string{"name", "slug", "image"},
	}
}

func ProductsDescriptor() query.Descriptor {
	return query.Descriptor{
		Table: "products",
		Fields: []query.Field{
			{Name: "id", Column: "id"},
			{Name: "title", Column: "title"},
			{Name: "slug", Column: "slug"},
			{Name: "description", Column: "description"},
			{Name: "quantity", Column: "quantity"},
			{Name: "sold", Column: "sold"},
			{Name: "price", Column: "price"},
			{Name: "priceAfterDiscount", Column: "price_after_discount"},
			{Name: "colors", Column: "colors"},
			{Name: "imageCover", Column: "image_cover"},
			{Name: "images", Column: "images"},
			{Name: "category", Column: "category_id"},
			{Name: "brand", Column: "brand_id"},
			{Name: "ratingsAverage", Column: "ratings_average"},
			{Name: "ratingsQuantity", Column: "ratings_quantity"},
			{Name: "createdAt", Column: "created_at"},
			{Name: "updatedAt", Column: "updated_at"},
			{Name: "version", Column: "version"},
		},
		Hidden: []string{"version"},
		// products search title OR description, everything else name
		SearchFields: []string{"title", "description"},
		Insertable: []string{
			"title", "slug", "description", "quantity", "sold", "price",
			"priceAfterDiscount", "colors", "imageCover", "images",
			"category", "brand",
		},
		Updatable: []string{
			"title", "slug", "description", "quantity", "sold", "price",
			"priceAfterDiscount", "colors", "imageCover", "images",
			"category", "brand",
		},
	}
}

// UsersDescriptor exposes only safe fields; the password hash is write-only
// and the reset-code fields never leave the typed users repo.
func UsersDescriptor() query.Descriptor {
	return query.Descriptor{
		Table: "users",
		Fields: []query.Field{
			{Name: "id", Column: "id"},
			{Name: "name", Column: "name"},
			{Name: "slug", Column: "slug"},
			{Name: "email", Column: "email"},
			{Name: "phone", Column: "phone"},
			{Name: "profileImg", Column: "profile_img"},
			{Name: "role", Column: "role"},
			{Name: "active", Column: "active"},
			{Name: "createdAt", Column: "created_at"},
			{Name: "updatedAt", Column: "updated_at"},
			{Name: "version", Column: "version"},
		},
		WriteOnly: []query.Field{
			{Name: "passwordHash", Column: "password_hash"},
		},
		Hidden:       []string{"version"},
		SearchFields: []string{"name"},
		Insertable:   []string{"name", "slug", "email", "phone", "profileImg", "role", "passwordHash"},
		Updatable:    []string{"name", "slug", "email", "phone", "profileImg", "role"},
	}
}
