// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections (if missing) and attaches JSON-Schema
// validators to them. Servers without collMod support (some DocumentDB
// versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isUnsupported(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(models.TableStudents, studentsSchema())
	ensure(models.TableClasses, namedSchema())
	ensure(models.TableDormitories, namedSchema())
	ensure(models.TableCourses, namedSchema())
	ensure(models.TableAcademicPermissions, academicPermissionsSchema())
	ensure(models.TableAcademicAbsences, academicAbsencesSchema())
	ensure(models.TableDormitoryPermissions, dormitoryPermissionsSchema())
	ensure(models.TableDormitoryPrayerAbsences, prayerAbsencesSchema())
	ensure(models.TableDormitoryCeremonyAbsences, ceremonyAbsencesSchema())
	ensure(models.TableProfiles, profilesSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 48 {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

// isUnsupported covers "no such command" (59) and "not implemented" (115).
func isUnsupported(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || ce.Code == 115) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "no such command") ||
		strings.Contains(s, "not implemented") ||
		strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank   = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	dateString = bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
	optString  = bson.M{"bsonType": bson.A{"string", "null"}}
)

func enum(values ...string) bson.M {
	a := make(bson.A, len(values))
	for i, v := range values {
		a[i] = v
	}
	return bson.M{"enum": a}
}

func object(required []string, props bson.M) bson.M {
	req := make(bson.A, len(required))
	for i, r := range required {
		req[i] = r
	}
	return bson.M{"$jsonSchema": bson.M{"bsonType": "object", "required": req, "properties": props}}
}

func studentsSchema() bson.M {
	return object([]string{"name", "name_ci"}, bson.M{
		"name":         nonBlank,
		"name_ci":      nonBlank,
		"class_id":     optString,
		"dormitory_id": optString,
	})
}

func namedSchema() bson.M {
	return object([]string{"name", "name_ci"}, bson.M{"name": nonBlank, "name_ci": nonBlank})
}

func academicPermissionsSchema() bson.M {
	return object([]string{"student_id", "date", "type"}, bson.M{
		"student_id": nonBlank,
		"date":       dateString,
		"type":       enum(models.PermissionTypeSick, models.PermissionTypePermission),
		"reason":     optString,
	})
}

func academicAbsencesSchema() bson.M {
	return object([]string{"student_id", "date"}, bson.M{
		"student_id": nonBlank,
		"date":       dateString,
		"course_id":  optString,
	})
}

func dormitoryPermissionsSchema() bson.M {
	return object([]string{"student_id", "date", "type", "number_of_days"}, bson.M{
		"student_id":     nonBlank,
		"date":           dateString,
		"type":           enum(models.LeaveTypes...),
		"number_of_days": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
		"reason":         optString,
	})
}

func prayerAbsencesSchema() bson.M {
	return object([]string{"student_id", "date", "prayer", "status"}, bson.M{
		"student_id": nonBlank,
		"date":       dateString,
		"prayer":     nonBlank,
		"status":     enum(models.AbsenceStatuses...),
	})
}

func ceremonyAbsencesSchema() bson.M {
	return object([]string{"student_id", "date", "status"}, bson.M{
		"student_id": nonBlank,
		"date":       dateString,
		"status":     enum(models.AbsenceStatuses...),
	})
}

func profilesSchema() bson.M {
	return object([]string{"username", "username_ci", "role"}, bson.M{
		"username":    nonBlank,
		"username_ci": nonBlank,
		"role":        enum(models.RoleSuperAdmin, models.RoleAcademicAdmin, models.RoleDormitoryAdmin),
	})
}
