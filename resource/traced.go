package resource

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kbukum/filmotheque/resource"

// tracedStore records a client span per store call.
type tracedStore struct {
	next   Store
	driver string
	tracer trace.Tracer
}

// Traced wraps next so every call produces a span named "store.<op>".
// ErrNotFound is not recorded as a span error.
func Traced(next Store, driver string) Store {
	return &tracedStore{next: next, driver: driver, tracer: otel.Tracer(tracerName)}
}

func (s *tracedStore) start(ctx context.Context, op, collection string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", s.driver),
			attribute.String("db.operation", op),
			attribute.String("db.collection", collection),
		),
	)
}

func end(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *tracedStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	ctx, span := s.start(ctx, "query", collection)
	docs, err := s.next.Query(ctx, collection, q)
	span.SetAttributes(attribute.Int("db.rows", len(docs)))
	end(span, err)
	return docs, err
}

func (s *tracedStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	ctx, span := s.start(ctx, "get", collection)
	d, err := s.next.Get(ctx, collection, id)
	end(span, err)
	return d, err
}

func (s *tracedStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	ctx, span := s.start(ctx, "add", collection)
	id, err := s.next.Add(ctx, collection, fields)
	end(span, err)
	return id, err
}

func (s *tracedStore) Update(ctx context.Context, collection, id string, patch Fields) error {
	ctx, span := s.start(ctx, "update", collection)
	err := s.next.Update(ctx, collection, id, patch)
	end(span, err)
	return err
}

func (s *tracedStore) Delete(ctx context.Context, collection, id string) error {
	ctx, span := s.start(ctx, "delete", collection)
	err := s.next.Delete(ctx, collection, id)
	end(span, err)
	return err
}
