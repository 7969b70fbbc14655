package catalog

import (
	"context"
	"fmt"

	"waguri-alarm/internal/repository"

	"go.uber.org/zap"
)

// Character 可选的应援角色
type Character struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProductID string `json:"product_id,omitempty"` // 为空表示免费
}

// Premium 表示角色需要购买解锁
func (c Character) Premium() bool {
	return c.ProductID != ""
}

// Product 可购买的角色包
type Product struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// 角色与商品的内置目录
const (
	DefaultCharacterID = "waguri"
	PremiumPackProduct = "character_pack_premium"
)

var characters = []Character{
	{ID: "waguri", Name: "Kaoruko Waguri"},
	{ID: "kaede", Name: "Kaede", ProductID: PremiumPackProduct},
	{ID: "subaru", Name: "Subaru", ProductID: PremiumPackProduct},
}

var products = []Product{
	{ID: PremiumPackProduct, Title: "Premium Character Pack"},
}

// Service 角色目录服务
// 封装选中角色的读写和付费角色的解锁校验
type Service struct {
	repo   *repository.CatalogRepository
	logger *zap.Logger
}

// NewService 创建角色目录服务
func NewService(repo *repository.CatalogRepository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Characters 返回完整角色目录
func (s *Service) Characters() []Character {
	out := make([]Character, len(characters))
	copy(out, characters)
	return out
}

// Products 返回可购买的商品目录
func (s *Service) Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// GetSelected 返回当前选中的角色，未选择时回落到默认角色
func (s *Service) GetSelected(ctx context.Context) (Character, error) {
	id, err := s.repo.GetSelectedCharacter(ctx)
	if err != nil {
		return Character{}, err
	}
	if id == "" {
		id = DefaultCharacterID
	}

	character, ok := findCharacter(id)
	if !ok {
		// 存储里留下了已下架的角色 ID，回落到默认
		s.logger.Warn("Selected character no longer in catalog",
			zap.String("character_id", id),
		)
		character, _ = findCharacter(DefaultCharacterID)
	}
	return character, nil
}

// Select 选中一个角色
// 付费角色要求对应商品已购买
func (s *Service) Select(ctx context.Context, characterID string) error {
	character, ok := findCharacter(characterID)
	if !ok {
		return fmt.Errorf("unknown character: %s", characterID)
	}

	if character.Premium() {
		owned, err := s.owns(ctx, character.ProductID)
		if err != nil {
			return err
		}
		if !owned {
			return fmt.Errorf("character %s requires product %s", characterID, character.ProductID)
		}
	}

	if err := s.repo.SetSelectedCharacter(ctx, characterID); err != nil {
		return err
	}

	s.logger.Info("Character selected",
		zap.String("character_id", characterID),
	)
	return nil
}

// Purchase 记录一次商品购买
func (s *Service) Purchase(ctx context.Context, productID string) error {
	if _, ok := findProduct(productID); !ok {
		return fmt.Errorf("unknown product: %s", productID)
	}

	if err := s.repo.AddEntitlement(ctx, productID); err != nil {
		return err
	}

	s.logger.Info("Product purchased",
		zap.String("product_id", productID),
	)
	return nil
}

// Owned 返回已购商品 ID 列表
func (s *Service) Owned(ctx context.Context) ([]string, error) {
	return s.repo.ListEntitlements(ctx)
}

func (s *Service) owns(ctx context.Context, productID string) (bool, error) {
	owned, err := s.repo.ListEntitlements(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range owned {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

func findCharacter(id string) (Character, bool) {
	for _, c := range characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

func findProduct(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
