package model

import "time"

// Category 图书分类，通过 ParentID 组成树
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ParentID     *int64 `json:"parent_id,omitempty"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

// CategoryNode 分类树节点
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children,omitempty"`
}

// Carousel 首页轮播
type Carousel struct {
	ID          int64     `json:"id"`
	ImageURL    string    `json:"image_url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	ButtonText  string    `json:"button_text,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsEnabled   bool      `json:"is_enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
