package h

func Safe[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}

func IsProduction(env string) bool {
	return env == "production" || env == "prod"
}
