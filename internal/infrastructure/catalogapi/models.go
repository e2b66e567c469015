package catalogapi

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// productDTO — товар в формате удалённого API. Идентификатор приходит как _id (MongoDB) или id.
type productDTO struct {
	MongoID     string          `json:"_id,omitempty"`
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Benefits    []string        `json:"benefits,omitempty"`
	Usage       string          `json:"usage,omitempty"`
}

// productsEnvelope — список товаров, обёрнутый в объект. nil означает, что ключа products нет.
type productsEnvelope struct {
	Products *[]productDTO `json:"products"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRes struct {
	Token string `json:"token"`
}

func toDomain(dto productDTO) domain.Product {
	id := dto.MongoID
	if id == "" {
		id = dto.ID
	}

	return domain.Product{
		ID:          id,
		Name:        dto.Name,
		Price:       dto.Price,
		Image:       dto.Image,
		Description: dto.Description,
		Category:    dto.Category,
		Benefits:    dto.Benefits,
		Usage:       dto.Usage,
	}
}

func toArrDomain(dtos []productDTO) []domain.Product {
	res := make([]domain.Product, 0, len(dtos))
	for _, dto := range dtos {
		res = append(res, toDomain(dto))
	}
	return res
}

// fromDomain готовит тело запроса админки. Идентификатор передаётся в пути, не в теле.
func fromDomain(p *domain.Product) productDTO {
	return productDTO{
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		Category:    p.Category,
		Benefits:    p.Benefits,
		Usage:       p.Usage,
	}
}
