// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Referential rules are declared with constraint tags so that AutoMigrate
// (used by the SQLite test databases) produces the same foreign keys as the
// SQL migrations: order items cascade with their order, products referenced by
// an order item cannot be deleted, and deleting a user clears orders.user_id.
//
// Structure:
// - base.go: BaseModel and the AutoMigrate model list
// - identity.go: User
// - catalog.go: Product, Category, Brand
// - trade.go: Order, OrderItem
package models
