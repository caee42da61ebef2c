package document

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/charlesng35/accountd/internal/models"
	"github.com/charlesng35/accountd/internal/store"
)

// userDocument is the BSON layout of the users collection.
type userDocument struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	Email            string        `bson:"email"`
	Username         string        `bson:"username"`
	Password         string        `bson:"password"`
	Verified         bool          `bson:"verified"`
	VerificationCode *string       `bson:"verificationCode"`
	CreatedAt        time.Time     `bson:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt"`
}

func newDocument(in store.NewUser, now time.Time) userDocument {
	doc := userDocument{
		ID:        bson.NewObjectID(),
		Email:     in.Email,
		Username:  in.Username,
		Password:  in.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.VerificationCode != "" {
		code := in.VerificationCode
		doc.VerificationCode = &code
	}
	return doc
}

func (d *userDocument) toModel() *models.User {
	u := &models.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.Password,
		Verified:     d.Verified,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.VerificationCode != nil {
		code := *d.VerificationCode
		u.VerificationCode = &code
	}
	return u
}

// updateDocument builds the $set statement for an update.
func updateDocument(update store.UserUpdate, now time.Time) bson.D {
	set := bson.D{}
	if update.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *update.Email})
	}
	if update.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *update.Username})
	}
	if update.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *update.PasswordHash})
	}
	if update.Verified != nil {
		set = append(set, bson.E{Key: "verified", Value: *update.Verified})
	}
	switch {
	case update.ClearCode:
		set = append(set, bson.E{Key: "verificationCode", Value: nil})
	case update.VerificationCode != nil:
		set = append(set, bson.E{Key: "verificationCode", Value: *update.VerificationCode})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now})
	return bson.D{{Key: "$set", Value: set}}
}

// idFilter matches a document by its hex ObjectID. Malformed ids match nothing.
func idFilter(id string) (bson.D, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}}, true
}

func emailFilter(email string) bson.D {
	return bson.D{{Key: "email", Value: email}}
}
