// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup and by `quizmartctl indexes ensure`. Each
ensure* function is idempotent. Errors are aggregated so every problem is
visible and startup can fail fast.

The unique indexes here are load-bearing: they are what keeps a
(company, user) pair to a single membership row, a user to a single cart,
and emails and product slugs unique under concurrent writers.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, c := range []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"companies", ensureCompanies},
		{"memberships", ensureMemberships},
		{"quizzes", ensureQuizzes},
		{"questions", ensureQuestions},
		{"answer_options", ensureAnswerOptions},
		{"quiz_results", ensureQuizResults},
		{"categories", ensureCategories},
		{"products", ensureProducts},
		{"reviews", ensureReviews},
		{"wishlist_items", ensureWishlistItems},
		{"discounts", ensureDiscounts},
		{"addresses", ensureAddresses},
		{"carts", ensureCarts},
		{"cart_items", ensureCartItems},
		{"orders", ensureOrders},
		{"order_items", ensureOrderItems},
		{"audit_events", ensureAuditEvents},
	} {
		if err := c.ensure(ctx, db); err != nil {
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(p *bool) bool { return p != nil && *p }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

type desiredIndex struct {
	model  mongo.IndexModel
	name   string
	unique bool
	sig    string
}

func describe(m mongo.IndexModel) desiredIndex {
	d := desiredIndex{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = boolVal(m.Options.Unique)
	}
	return d
}

// recreate drops an index and builds the desired one in its place.
func recreate(ctx context.Context, coll *mongo.Collection, oldName string, d desiredIndex) error {
	if _, err := coll.Indexes().DropOne(ctx, oldName); err != nil {
		return fmt.Errorf("drop %s failed: %w", oldName, err)
	}
	return create(ctx, coll, d)
}

func create(ctx context.Context, coll *mongo.Collection, d desiredIndex) error {
	if _, err := coll.Indexes().CreateOne(ctx, d.model); err != nil {
		if d.unique && isDuplicateKeyErr(err) {
			return fmt.Errorf("cannot create unique index (duplicates present on %s)", d.sig)
		}
		return err
	}
	return nil
}

// reconcile brings one desired index into existence: reuse when keys and
// uniqueness match, rename when only the name differs, rebuild otherwise.
func reconcile(ctx context.Context, coll *mongo.Collection, d desiredIndex) (action string, err error) {
	existing := listIndexes(ctx, coll)

	if ex, ok := existing[d.sig]; ok {
		switch {
		case d.unique != boolVal(ex.Unique):
			return "rebuilt", recreate(ctx, coll, ex.Name, d)
		case d.name != "" && ex.Name != d.name:
			return "renamed", recreate(ctx, coll, ex.Name, d)
		default:
			return "reused", nil
		}
	}

	err = create(ctx, coll, d)
	if err == nil {
		return "created", nil
	}
	if !isOptionsConflictErr(err) {
		return "", err
	}

	// Lost a race with another creator or a server that reports the
	// conflict late: look again and converge.
	ex, ok := listIndexes(ctx, coll)[d.sig]
	if !ok {
		return "", err
	}
	if d.unique == boolVal(ex.Unique) {
		return "reused", nil
	}
	return "rebuilt", recreate(ctx, coll, ex.Name, d)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		d := describe(m)
		start := time.Now()

		action, err := reconcile(ctx, coll, d)
		if err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", d.name),
				zap.String("keys", d.sig),
				zap.Bool("unique", d.unique),
				zap.Duration("took", time.Since(start)),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Bool("unique", d.unique),
			zap.String("action", action),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func uniq(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		uniq("uniq_users_email", bson.D{{Key: "email", Value: 1}}),
		idx("idx_users_fullnameci__id", bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}),
		idx("idx_users_role", bson.D{{Key: "role", Value: 1}}),
	})
}

func ensureCompanies(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("companies"), []mongo.IndexModel{
		idx("idx_companies_owner", bson.D{{Key: "owner_id", Value: 1}}),
		idx("idx_companies_visibility_nameci", bson.D{{Key: "visibility", Value: 1}, {Key: "name_ci", Value: 1}}),
	})
}

func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("memberships"), []mongo.IndexModel{
		uniq("uniq_memberships_company_user", bson.D{{Key: "company_id", Value: 1}, {Key: "user_id", Value: 1}}),
		idx("idx_memberships_company_status", bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}}),
		idx("idx_memberships_user_status", bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}),
	})
}

func ensureQuizzes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("quizzes"), []mongo.IndexModel{
		idx("idx_quizzes_company_created", bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}}),
	})
}

func ensureQuestions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("questions"), []mongo.IndexModel{
		idx("idx_questions_quiz_position", bson.D{{Key: "quiz_id", Value: 1}, {Key: "position", Value: 1}}),
	})
}

func ensureAnswerOptions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("answer_options"), []mongo.IndexModel{
		idx("idx_answeroptions_question", bson.D{{Key: "question_id", Value: 1}}),
		idx("idx_answeroptions_quiz", bson.D{{Key: "quiz_id", Value: 1}}),
	})
}

func ensureQuizResults(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("quiz_results"), []mongo.IndexModel{
		idx("idx_quizresults_user_company", bson.D{{Key: "user_id", Value: 1}, {Key: "company_id", Value: 1}}),
		idx("idx_quizresults_quiz_created", bson.D{{Key: "quiz_id", Value: 1}, {Key: "created_at", Value: -1}}),
	})
}

func ensureCategories(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("categories"), []mongo.IndexModel{
		uniq("uniq_categories_slug", bson.D{{Key: "slug", Value: 1}}),
		idx("idx_categories_parent", bson.D{{Key: "parent_id", Value: 1}}),
	})
}

func ensureProducts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("products"), []mongo.IndexModel{
		uniq("uniq_products_slug", bson.D{{Key: "slug", Value: 1}}),
		idx("idx_products_category_active", bson.D{{Key: "category_id", Value: 1}, {Key: "is_active", Value: 1}}),
	})
}

func ensureReviews(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("reviews"), []mongo.IndexModel{
		uniq("uniq_reviews_user_product", bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}}),
		idx("idx_reviews_product_created", bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}),
	})
}

func ensureWishlistItems(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("wishlist_items"), []mongo.IndexModel{
		uniq("uniq_wishlist_user_product", bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}}),
		idx("idx_wishlist_user_created", bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}),
		idx("idx_wishlist_product", bson.D{{Key: "product_id", Value: 1}}),
	})
}

func ensureDiscounts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("discounts"), []mongo.IndexModel{
		uniq("uniq_discounts_code", bson.D{{Key: "code", Value: 1}}),
	})
}

func ensureAddresses(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("addresses"), []mongo.IndexModel{
		idx("idx_addresses_user_default", bson.D{{Key: "user_id", Value: 1}, {Key: "is_default", Value: -1}}),
	})
}

func ensureCarts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("carts"), []mongo.IndexModel{
		uniq("uniq_carts_user", bson.D{{Key: "user_id", Value: 1}}),
		idx("idx_carts_updated", bson.D{{Key: "updated_at", Value: 1}}),
	})
}

func ensureCartItems(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("cart_items"), []mongo.IndexModel{
		uniq("uniq_cartitems_cart_product", bson.D{{Key: "cart_id", Value: 1}, {Key: "product_id", Value: 1}}),
	})
}

func ensureOrders(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("orders"), []mongo.IndexModel{
		uniq("uniq_orders_ref", bson.D{{Key: "order_ref", Value: 1}}),
		idx("idx_orders_user_created", bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}),
		idx("idx_orders_status", bson.D{{Key: "status", Value: 1}}),
	})
}

func ensureOrderItems(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("order_items"), []mongo.IndexModel{
		idx("idx_orderitems_order", bson.D{{Key: "order_id", Value: 1}}),
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		idx("idx_audit_timestamp", bson.D{{Key: "timestamp", Value: -1}}),
		idx("idx_audit_company_timestamp", bson.D{{Key: "company_id", Value: 1}, {Key: "timestamp", Value: -1}}),
		idx("idx_audit_user_timestamp", bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}),
		idx("idx_audit_category_type_timestamp", bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}}),
	})
}
