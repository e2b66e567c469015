package converter

// ProductRedisModel — товар в кэше Redis (JSON).
type ProductRedisModel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Image       string   `json:"image,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Benefits    []string `json:"benefits,omitempty"`
	Usage       string   `json:"usage,omitempty"`
}

// CartLineRedisModel — строка снимка корзины.
type CartLineRedisModel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image,omitempty"`
	Quantity int    `json:"quantity"`
}

// CartRedisModel — снимок корзины сессии.
type CartRedisModel struct {
	Items   []CartLineRedisModel `json:"items"`
	Version uint64               `json:"version"`
}
