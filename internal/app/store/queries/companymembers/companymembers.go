package companymembers

import (
	"context"

	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Item is a membership row joined with a display name: the user's name
// when listing a company's members, the company's name when listing a
// user's companies.
type Item struct {
	ID        primitive.ObjectID      `bson:"_id" json:"id"`
	CompanyID primitive.ObjectID      `bson:"company_id" json:"company_id"`
	UserID    primitive.ObjectID      `bson:"user_id" json:"user_id"`
	Name      string                  `bson:"name" json:"name"`
	Status    models.MembershipStatus `bson:"status" json:"status"`
}

type facetResult[T any] struct {
	Items []T `bson:"items"`
	Total []struct {
		N int64 `bson:"n"`
	} `bson:"total"`
}

// page appends a $facet stage that returns one window plus the full count,
// then decodes it into an envelope.
func page[T any](ctx context.Context, coll *mongo.Collection, pipe mongo.Pipeline, p paging.Params) (paging.Envelope[T], error) {
	pipe = append(pipe, bson.D{{Key: "$facet", Value: bson.M{
		"items": bson.A{
			bson.M{"$skip": p.Skip},
			bson.M{"$limit": p.Limit},
		},
		"total": bson.A{bson.M{"$count": "n"}},
	}}})

	cur, err := coll.Aggregate(ctx, pipe)
	if err != nil {
		return paging.Envelope[T]{}, err
	}
	defer cur.Close(ctx)

	var res facetResult[T]
	if cur.Next(ctx) {
		if err := cur.Decode(&res); err != nil {
			return paging.Envelope[T]{}, err
		}
	}
	if err := cur.Err(); err != nil {
		return paging.Envelope[T]{}, err
	}
	var total int64
	if len(res.Total) > 0 {
		total = res.Total[0].N
	}
	return paging.Wrap(res.Items, total, p), nil
}

// ListMembers returns a company's rows in status, each named after its user
// (first + last), ordered by name.
func ListMembers(ctx context.Context, db *mongo.Database, companyID primitive.ObjectID, status models.MembershipStatus, p paging.Params) (paging.Envelope[Item], error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"company_id": companyID, "status": status}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$sort", Value: bson.D{
			{Key: "user.full_name_ci", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"company_id": 1,
			"user_id":    1,
			"status":     1,
			"name": bson.M{"$trim": bson.M{"input": bson.M{"$concat": bson.A{
				bson.M{"$ifNull": bson.A{"$user.first_name", ""}},
				" ",
				bson.M{"$ifNull": bson.A{"$user.last_name", ""}},
			}}}},
		}}},
	}
	return page[Item](ctx, db.Collection("memberships"), pipe, p)
}

// ListUserCompanies returns a user's rows in status, each named after its
// company, ordered by company name.
func ListUserCompanies(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, status models.MembershipStatus, p paging.Params) (paging.Envelope[Item], error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID, "status": status}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "companies",
			"localField":   "company_id",
			"foreignField": "_id",
			"as":           "company",
		}}},
		{{Key: "$unwind", Value: "$company"}},
		{{Key: "$sort", Value: bson.D{
			{Key: "company.name_ci", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"company_id": 1,
			"user_id":    1,
			"status":     1,
			"name":       "$company.name",
		}}},
	}
	return page[Item](ctx, db.Collection("memberships"), pipe, p)
}

// ListAvailableCompanies returns companies owned by ownerID in which userID
// holds no row of any status. It feeds the invite picker.
func ListAvailableCompanies(ctx context.Context, db *mongo.Database, userID, ownerID primitive.ObjectID, p paging.Params) (paging.Envelope[models.Company], error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "memberships",
			"let":  bson.M{"cid": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{
					"user_id": userID,
					"$expr":   bson.M{"$eq": bson.A{"$company_id", "$$cid"}},
				}},
				bson.M{"$project": bson.M{"_id": 1}},
			},
			"as": "rows",
		}}},
		{{Key: "$match", Value: bson.M{"rows": bson.M{"$size": 0}}}},
		{{Key: "$project", Value: bson.M{"rows": 0}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "name_ci", Value: 1},
			{Key: "_id", Value: 1},
		}}},
	}
	return page[models.Company](ctx, db.Collection("companies"), pipe, p)
}
