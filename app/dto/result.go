package dto

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
