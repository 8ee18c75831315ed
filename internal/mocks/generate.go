package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Archive --dir ../domain/projection --output domain/projection --outpkg projectionmock --filename archive_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/projection --output domain/projection --outpkg projectionmock --filename repository_mock.go
