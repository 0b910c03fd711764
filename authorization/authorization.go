package authorization

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/cristalhq/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/5nufkin/Rarebnb-backend/domain"
)

var jwtKey = []byte(os.Getenv("SECRET_KEY"))

var verifier, _ = jwt.NewVerifierHS(jwt.HS256, jwtKey)

func GetToken(tokenString string) *jwt.Token {
	token, err := jwt.Parse([]byte(tokenString), verifier)
	if err != nil {
		log.Println(err)
	}
	return token
}

func GetMapClaims(tokenBytes []byte) map[string]string {
	var claims map[string]string

	err := jwt.ParseClaims(tokenBytes, verifier, &claims)
	if err != nil {
		log.Println(err)
	}

	return claims
}

// ActorFromRequest builds the caller identity from the Bearer token.
// The actor is passed explicitly into every lifecycle operation.
func ActorFromRequest(req *http.Request) (domain.Actor, error) {
	bearer := req.Header.Get("Authorization")
	if bearer == "" {
		return domain.Actor{}, errors.New("missing authorization header")
	}

	bearerToken := strings.Split(bearer, "Bearer ")
	if len(bearerToken) != 2 {
		return domain.Actor{}, errors.New("invalid token format")
	}

	token, err := jwt.Parse([]byte(bearerToken[1]), verifier)
	if err != nil {
		log.Println("Error parsing token:", err)
		return domain.Actor{}, err
	}

	claims := GetMapClaims(token.Bytes())

	actorID, err := primitive.ObjectIDFromHex(claims["user_id"])
	if err != nil {
		return domain.Actor{}, errors.New("invalid user_id claim")
	}

	return domain.Actor{
		ID:       actorID,
		FullName: claims["fullname"],
		IsAdmin:  claims["userType"] == "Admin",
	}, nil
}
